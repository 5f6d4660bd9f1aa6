package equatorial

import (
	"fmt"
	"strings"
)

// AllContracts is the selection sentinel that expands to every contract.
const AllContracts = "all"

// Contract is a billing account ("unidade consumidora").
type Contract struct {
	Number  string
	Address string
}

// ListContracts returns the profile's contracts in the order they were issued.
func ListContracts(profile UserProfile) []Contract {
	contracts := make([]Contract, 0, len(profile.ContasContrato))
	for _, cc := range profile.ContasContrato {
		contracts = append(contracts, Contract{
			Number:  cc.Numero,
			Address: strings.Join([]string{cc.Endereco, cc.Bairro, cc.Cidade}, ", "),
		})
	}
	return contracts
}

// ResolveSelection turns the operator's choices into contract numbers. Any
// choice equal to AllContracts selects every contract in listed order;
// otherwise the choices are returned as given, after checking each one is
// a known contract.
func ResolveSelection(contracts []Contract, choices ...string) ([]string, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: no contract selected", ErrValidation)
	}

	known := make(map[string]bool, len(contracts))
	for _, c := range contracts {
		known[c.Number] = true
	}

	for _, choice := range choices {
		if choice == AllContracts {
			numbers := make([]string, 0, len(contracts))
			for _, c := range contracts {
				numbers = append(numbers, c.Number)
			}
			return numbers, nil
		}
	}

	selected := make([]string, 0, len(choices))
	seen := make(map[string]bool, len(choices))
	for _, choice := range choices {
		if !known[choice] {
			return nil, fmt.Errorf("%w: unknown contract %q", ErrValidation, choice)
		}
		if seen[choice] {
			continue
		}
		seen[choice] = true
		selected = append(selected, choice)
	}
	return selected, nil
}
