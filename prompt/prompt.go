// Package prompt reads operator input line by line.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
)

// RequiredField is shown when an answer is left blank.
const RequiredField = "Esse campo é de preenchimento obrigatório."

type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask prints label and returns the trimmed answer. Blank answers fail with
// equatorial.ErrValidation.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %s", equatorial.ErrValidation, label, RequiredField)
	}
	answer := strings.TrimSpace(p.in.Text())
	if answer == "" {
		return "", fmt.Errorf("%w: %s: %s", equatorial.ErrValidation, label, RequiredField)
	}
	return answer, nil
}

// Credentials asks for whatever part of creds is still missing.
func (p *Prompter) Credentials(creds equatorial.Credentials) (equatorial.Credentials, error) {
	var err error
	if creds.Identifier == "" {
		if creds.Identifier, err = p.Ask("CPF do Titular"); err != nil {
			return creds, err
		}
	}
	if creds.Secret == "" {
		if creds.Secret, err = p.Ask("Data de Nascimento do Titular"); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

// Contracts lists the contracts numbered from 1 and reads a selection: "all"
// (or "todas"), or a comma separated list of list positions or contract
// numbers. The answer is returned as raw choices for
// equatorial.ResolveSelection.
func (p *Prompter) Contracts(contracts []equatorial.Contract) ([]string, error) {
	for i, c := range contracts {
		fmt.Fprintf(p.out, "  %d) %s - %s\n", i+1, c.Number, c.Address)
	}
	answer, err := p.Ask(fmt.Sprintf("Unidade Consumidora (1-%d, números separados por vírgula ou %q)", len(contracts), equatorial.AllContracts))
	if err != nil {
		return nil, err
	}

	var choices []string
	for _, field := range strings.Split(answer, ",") {
		field = strings.TrimSpace(field)
		switch {
		case field == "":
			continue
		case strings.EqualFold(field, equatorial.AllContracts), strings.EqualFold(field, "todas"):
			return []string{equatorial.AllContracts}, nil
		}
		if n, err := strconv.Atoi(field); err == nil && n >= 1 && n <= len(contracts) && !isContract(contracts, field) {
			field = contracts[n-1].Number
		}
		choices = append(choices, field)
	}
	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: %s", equatorial.ErrValidation, RequiredField)
	}
	return choices, nil
}

func isContract(contracts []equatorial.Contract, number string) bool {
	for _, c := range contracts {
		if c.Number == number {
			return true
		}
	}
	return false
}
