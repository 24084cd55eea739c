package ledger

import (
	"strings"
)

// AccountType represents the type of account
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeAssets
	AccountTypeLiabilities
	AccountTypeEquity
	AccountTypeIncome
	AccountTypeExpenses
)

// String returns the string representation of the account type
func (t AccountType) String() string {
	switch t {
	case AccountTypeAssets:
		return "Assets"
	case AccountTypeLiabilities:
		return "Liabilities"
	case AccountTypeEquity:
		return "Equity"
	case AccountTypeIncome:
		return "Income"
	case AccountTypeExpenses:
		return "Expenses"
	default:
		return "Unknown"
	}
}

// ParseAccountType parses the account type from the account name
func ParseAccountType(account string) AccountType {
	root, _, _ := strings.Cut(account, ":")
	switch root {
	case "Assets":
		return AccountTypeAssets
	case "Liabilities":
		return AccountTypeLiabilities
	case "Equity":
		return AccountTypeEquity
	case "Income":
		return AccountTypeIncome
	case "Expenses":
		return AccountTypeExpenses
	default:
		return AccountTypeUnknown
	}
}

// AccountHierarchy returns every prefix of account, shortest first.
//
//	AccountHierarchy("Assets:Bank:Checking") // [Assets Assets:Bank Assets:Bank:Checking]
func AccountHierarchy(account string) []string {
	if account == "" {
		return nil
	}
	parts := strings.Split(account, ":")
	out := make([]string, len(parts))
	for i := range parts {
		out[i] = strings.Join(parts[:i+1], ":")
	}
	return out
}

// requiresOpen reports whether using account before its open directive is worth a warning.
// Equity accounts are exempt.
func requiresOpen(account string) bool {
	return account != "" && ParseAccountType(account) != AccountTypeEquity
}
