package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/billgen/cfdi-bill-generator/dto"
)

var menuKeys = map[dto.Insurer]string{
	dto.InsurerQualitas: "Q",
	dto.InsurerPotosi:   "SP",
	dto.InsurerAxa:      "A",
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// prompter asks the questions of an interactive run.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{r: bufio.NewReader(r), w: w}
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.w, question)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) chooseInsurer() (dto.Insurer, error) {
	fmt.Fprintln(p.w, "Choose the company to bill:")
	for _, ins := range dto.Insurers {
		fmt.Fprintf(p.w, "  %-3s %s\n", menuKeys[ins], ins)
	}
	for {
		answer, err := p.ask("Company: ")
		if err != nil {
			return 0, err
		}
		ins, err := dto.ParseInsurer(answer)
		if err == nil {
			return ins, nil
		}
		fmt.Fprintf(p.w, "%v, try again\n", err)
	}
}

func (p *prompter) chooseTaxGroup() (dto.TaxGroup, error) {
	fmt.Fprintln(p.w, "Choose the tax group:")
	fmt.Fprintf(p.w, "  D   %s\n", dto.TaxGroupDamage.Label())
	fmt.Fprintf(p.w, "  V   %s\n", dto.TaxGroupLife.Label())
	for {
		answer, err := p.ask("Tax group [D]: ")
		if err != nil {
			return dto.TaxGroupNone, err
		}
		if answer == "" {
			return dto.TaxGroupDamage, nil
		}
		group, err := dto.ParseTaxGroup(answer)
		if err == nil {
			return group, nil
		}
		fmt.Fprintf(p.w, "%v, try again\n", err)
	}
}
