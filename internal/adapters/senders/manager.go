package senders

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

// Service resolves the named accounts webuild signs with
type Service struct {
	cfg      *config.RuntimeConfig
	log      *slog.Logger
	accounts map[string]*models.Account
	order    []string
}

// NewService loads the configured accounts. Dev accounts are added on networks
// that run the bundled dev chain.
func NewService(cfg *config.RuntimeConfig, log *slog.Logger) (*Service, error) {
	s := &Service{
		cfg:      cfg,
		log:      log.With("component", "Senders"),
		accounts: make(map[string]*models.Account),
	}

	if cfg.Network != nil && cfg.Network.NativeContracts {
		for _, dev := range config.DevAccounts {
			acct, err := accountFromKey(dev.Name, dev.PrivateKey)
			if err != nil {
				return nil, fmt.Errorf("dev account %s: %w", dev.Name, err)
			}
			s.add(acct)
		}
	}

	names := make([]string, 0, len(cfg.Accounts))
	for name := range cfg.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		acct, err := loadAccount(name, cfg.Accounts[name])
		if err != nil {
			return nil, err
		}
		s.add(acct)
	}
	return s, nil
}

func (s *Service) add(acct *models.Account) {
	if _, ok := s.accounts[acct.Name]; !ok {
		s.order = append(s.order, acct.Name)
	}
	s.accounts[acct.Name] = acct
}

// ResolveAccount resolves a name, an address or, when ref is empty, the default sender
func (s *Service) ResolveAccount(ctx context.Context, ref string) (*models.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return s.defaultAccount()
	}

	if acct, ok := s.accounts[ref]; ok {
		return cloneAccount(acct), nil
	}

	// Try case-insensitive lookup
	lower := strings.ToLower(ref)
	for name, acct := range s.accounts {
		if strings.ToLower(name) == lower {
			return cloneAccount(acct), nil
		}
	}

	if common.IsHexAddress(ref) {
		addr := common.HexToAddress(ref)
		for _, name := range s.order {
			if s.accounts[name].Address == addr {
				return cloneAccount(s.accounts[name]), nil
			}
		}
		return &models.Account{Name: addr.Hex(), Address: addr}, nil
	}

	return nil, fmt.Errorf("account %q: %w", ref, domain.ErrUnknownAccount)
}

// ListAccounts returns dev accounts first, then configured accounts by name
func (s *Service) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts := make([]*models.Account, 0, len(s.order))
	for _, name := range s.order {
		accounts = append(accounts, cloneAccount(s.accounts[name]))
	}
	return accounts, nil
}

// defaultAccount returns the default sender
func (s *Service) defaultAccount() (*models.Account, error) {
	if name := s.cfg.DefaultSender; name != "" {
		acct, ok := s.accounts[name]
		if !ok {
			return nil, fmt.Errorf("default sender %q: %w", name, domain.ErrUnknownAccount)
		}
		return cloneAccount(acct), nil
	}

	// Check for common default names
	for _, name := range []string{"default", "owner", "deployer"} {
		if acct, ok := s.accounts[name]; ok && acct.CanSign() {
			return cloneAccount(acct), nil
		}
	}

	// If only one signer exists, use it
	var signers []*models.Account
	for _, name := range s.order {
		if s.accounts[name].CanSign() {
			signers = append(signers, s.accounts[name])
		}
	}
	if len(signers) == 1 {
		return cloneAccount(signers[0]), nil
	}

	return nil, fmt.Errorf("no default sender configured: %w", domain.ErrUnknownAccount)
}

func loadAccount(name string, ac config.AccountConfig) (*models.Account, error) {
	if ac.PrivateKey != "" {
		acct, err := accountFromKey(name, ac.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", name, err)
		}
		if ac.Address != "" && common.HexToAddress(ac.Address) != acct.Address {
			return nil, fmt.Errorf("account %s: address %s does not match private key (%s)", name, ac.Address, acct.Address.Hex())
		}
		return acct, nil
	}
	if !common.IsHexAddress(ac.Address) {
		return nil, fmt.Errorf("account %s: %w %q", name, domain.ErrInvalidAddress, ac.Address)
	}
	return &models.Account{Name: name, Address: common.HexToAddress(ac.Address)}, nil
}

func accountFromKey(name, hexKey string) (*models.Account, error) {
	key, err := parsePrivateKey(hexKey)
	if err != nil {
		return nil, err
	}
	return &models.Account{
		Name:       name,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, nil
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key format: %w", err)
	}
	return key, nil
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

// Ensure the service implements the interface
var _ usecase.AccountResolver = (*Service)(nil)
