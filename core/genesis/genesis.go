package genesis

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"payvault/core"
)

// Document is the YAML bootstrap declaration applied to a fresh ledger: role
// holders, the token catalog, conversion rates and any pre-enrolled
// beneficiaries or pre-funded vault holdings.
type Document struct {
	Owner           string         `yaml:"owner"`
	Oracle          string         `yaml:"oracle"`
	PaymentsAllowed *bool          `yaml:"payments_allowed"`
	ReferenceRate   string         `yaml:"reference_rate"`
	Tokens          []TokenSpec    `yaml:"tokens"`
	Employees       []EmployeeSpec `yaml:"employees"`
	Vault           []VaultSpec    `yaml:"vault"`
}

// TokenSpec declares one settlement asset.
type TokenSpec struct {
	Symbol   string `yaml:"symbol"`
	Rate     string `yaml:"rate"`
	Mintable bool   `yaml:"mintable"`
}

// EmployeeSpec declares one pre-enrolled beneficiary.
type EmployeeSpec struct {
	Address           string   `yaml:"address"`
	YearlyEntitlement string   `yaml:"yearly_entitlement"`
	Assets            []string `yaml:"assets"`
}

// VaultSpec pre-funds the system vault with one asset.
type VaultSpec struct {
	Symbol string `yaml:"symbol"`
	Amount string `yaml:"amount"`
}

// Load reads and parses a genesis document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := new(Document)
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseAddress(field, value string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return addr, fmt.Errorf("genesis: %s is not a valid address: %q", field, value)
	}
	copy(addr[:], common.HexToAddress(trimmed).Bytes())
	return addr, nil
}

func parseAmount(field, value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("genesis: %s amount missing", field)
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("genesis: %s is not a valid amount: %q", field, value)
	}
	return amount, nil
}

// Apply bootstraps the ledger from the document. Each step runs through the
// ledger's public entry points so the usual validation and events apply.
func (d *Document) Apply(l *core.Ledger) error {
	owner, err := parseAddress("owner", d.Owner)
	if err != nil {
		return err
	}
	oracle, err := parseAddress("oracle", d.Oracle)
	if err != nil {
		return err
	}
	if err := l.Bootstrap(owner, oracle); err != nil {
		return err
	}

	for _, spec := range d.Tokens {
		rate, err := parseAmount("token "+spec.Symbol+" rate", spec.Rate)
		if err != nil {
			return err
		}
		if err := l.RegisterToken(owner, spec.Symbol, rate, spec.Mintable); err != nil {
			return err
		}
	}

	if strings.TrimSpace(d.ReferenceRate) != "" {
		rate, err := parseAmount("reference_rate", d.ReferenceRate)
		if err != nil {
			return err
		}
		if err := l.SetReferenceRate(oracle, rate); err != nil {
			return err
		}
	}

	for _, spec := range d.Employees {
		addr, err := parseAddress("employee", spec.Address)
		if err != nil {
			return err
		}
		entitlement, err := parseAmount("employee "+spec.Address+" entitlement", spec.YearlyEntitlement)
		if err != nil {
			return err
		}
		if err := l.Enroll(owner, addr, entitlement); err != nil {
			return err
		}
		for _, symbol := range spec.Assets {
			if err := l.GrantAsset(owner, addr, symbol); err != nil {
				return err
			}
		}
	}

	for _, spec := range d.Vault {
		amount, err := parseAmount("vault "+spec.Symbol, spec.Amount)
		if err != nil {
			return err
		}
		if err := l.FundVault(owner, spec.Symbol, amount); err != nil {
			return err
		}
	}

	if d.PaymentsAllowed != nil && !*d.PaymentsAllowed {
		if err := l.SetPaymentsAllowed(owner, false); err != nil {
			return err
		}
	}
	return nil
}
