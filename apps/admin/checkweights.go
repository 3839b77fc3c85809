package main

import (
	"errors"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/trezcool/gradebook/core/evaluation"
	"github.com/trezcool/gradebook/storage/seed"
)

var errInvalidWeights = errors.New("criteria weights do not sum to 100%")

// criteriaFile is the YAML layout read by checkweights.
type criteriaFile struct {
	Class    string                 `yaml:"class"`
	Criteria []evaluation.Criterion `yaml:"criteria"`
}

// checkWeights adds the file's criteria one by one, as a user would through the form,
// and reports every rejection and the resulting summary.
func (cli *commandLine) checkWeights(path string) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	var file criteriaFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	e := evaluation.NewEditor(evaluation.NewCriterionSet())
	for _, c := range file.Criteria {
		if err := e.OpenCreate(); err != nil {
			return err
		}
		if err := e.SetForm(evaluation.Form{Name: c.Name, Weight: c.Weight}); err != nil {
			return err
		}
		if _, err := e.Submit(); err != nil {
			fmt.Fprintf(cli.out, "rejected %q (%d%%): %v\n", c.Name, c.Weight, err)
			e.Cancel()
		}
	}

	if file.Class != "" {
		fmt.Fprintf(cli.out, "class: %s\n", file.Class)
	}
	for _, c := range e.Criteria() {
		fmt.Fprintf(cli.out, "  %d. %s: %d%%\n", c.ID, c.Name, c.Weight)
	}
	sum := e.Summary()
	fmt.Fprintf(cli.out, "total: %d%% (%s)\n", sum.Total, sum.Message)
	if !sum.Valid {
		return errInvalidWeights
	}
	return nil
}

// checkSeed loads a seed dataset and prints what it holds.
func (cli *commandLine) checkSeed(path string) error {
	data, err := seed.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "users: %d, classes: %d, students: %d, upcoming evaluations: %d\n",
		len(data.Users), len(data.Classes), len(data.Students), len(data.Evaluations))
	return nil
}
