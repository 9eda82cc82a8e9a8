package webuild

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/webuildworld/webuild/internal/domain"
)

// ArtifactLoader reads creation bytecode from compiler output. It understands the
// foundry layout (<dir>/<Name>.sol/<Name>.json, bytecode.object) and the truffle
// layout (<dir>/<Name>.json, bytecode string).
type ArtifactLoader struct {
	dir string
}

// NewArtifactLoader creates a loader rooted at dir
func NewArtifactLoader(dir string) *ArtifactLoader {
	return &ArtifactLoader{dir: dir}
}

type artifactFile struct {
	Bytecode json.RawMessage `json:"bytecode"`
}

// Bytecode returns the creation code of contractName
func (l *ArtifactLoader) Bytecode(contractName string) ([]byte, error) {
	if l.dir == "" {
		return nil, fmt.Errorf("no artifacts directory configured: %w", domain.ErrNotFound)
	}

	candidates := []string{
		filepath.Join(l.dir, contractName+".sol", contractName+".json"),
		filepath.Join(l.dir, contractName+".json"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
		}
		code, err := parseBytecode(data)
		if err != nil {
			return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
		}
		return code, nil
	}
	return nil, fmt.Errorf("no artifact for %s in %s: %w", contractName, l.dir, domain.ErrNotFound)
}

func parseBytecode(data []byte) ([]byte, error) {
	var artifact artifactFile
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, err
	}
	if len(artifact.Bytecode) == 0 {
		return nil, errors.New("missing bytecode")
	}

	var hexCode string
	if artifact.Bytecode[0] == '"' {
		if err := json.Unmarshal(artifact.Bytecode, &hexCode); err != nil {
			return nil, err
		}
	} else {
		var object struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(artifact.Bytecode, &object); err != nil {
			return nil, err
		}
		hexCode = object.Object
	}

	if !strings.HasPrefix(hexCode, "0x") {
		hexCode = "0x" + hexCode
	}
	if strings.Contains(hexCode, "__") {
		return nil, errors.New("bytecode has unlinked libraries")
	}
	code, err := hexutil.Decode(hexCode)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, errors.New("empty bytecode (abstract contract or interface)")
	}
	return code, nil
}
