package config

// DevAccount is a pre-funded dev chain account
type DevAccount struct {
	Name       string
	PrivateKey string
}

// DevAccounts are derived from the well-known hardhat/anvil mnemonic.
// They are funded at dev chain genesis and available on every dev network.
var DevAccounts = []DevAccount{
	{Name: "owner", PrivateKey: "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"},
	{Name: "builder", PrivateKey: "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"},
	{Name: "alice", PrivateKey: "5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a"},
	{Name: "bob", PrivateKey: "7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6"},
}
