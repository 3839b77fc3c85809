// Package seed holds the demo dataset the in-memory database starts with.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DateLayout is the format of evaluation dates.
const DateLayout = "2006-01-02"

//go:embed seed.yaml
var defaultData []byte

type (
	User struct {
		Name     string   `yaml:"name"`
		Email    string   `yaml:"email"`
		Password string   `yaml:"password"`
		Roles    []string `yaml:"roles"`
	}

	Class struct {
		Name     string `yaml:"name"`
		Capacity int    `yaml:"capacity"`
	}

	Student struct {
		Name   string `yaml:"name"`
		Email  string `yaml:"email"`
		Class  string `yaml:"class"`
		Status string `yaml:"status"`
	}

	Evaluation struct {
		Class       string `yaml:"class"`
		Date        string `yaml:"date"`
		Description string `yaml:"description"`
	}

	Data struct {
		Users       []User       `yaml:"users"`
		Classes     []Class      `yaml:"classes"`
		Students    []Student    `yaml:"students"`
		Evaluations []Evaluation `yaml:"upcoming_evaluations"`
	}
)

// Default returns the embedded dataset.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads a dataset from path; an empty path means the embedded one.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading seed file %s", path)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(err, "decoding seed data")
	}
	if err := data.validate(); err != nil {
		return nil, errors.Wrap(err, "validating seed data")
	}
	return &data, nil
}

func (d *Data) validate() error {
	classes := make(map[string]bool, len(d.Classes))
	for _, c := range d.Classes {
		if c.Name == "" {
			return errors.New("class without a name")
		}
		if c.Capacity <= 0 {
			return fmt.Errorf("class %q: capacity must be positive", c.Name)
		}
		if classes[c.Name] {
			return fmt.Errorf("class %q: duplicate name", c.Name)
		}
		classes[c.Name] = true
	}

	emails := make(map[string]bool, len(d.Students))
	for _, s := range d.Students {
		if !classes[s.Class] {
			return fmt.Errorf("student %q: unknown class %q", s.Name, s.Class)
		}
		if s.Status != "active" && s.Status != "inactive" {
			return fmt.Errorf("student %q: invalid status %q", s.Name, s.Status)
		}
		if emails[s.Email] {
			return fmt.Errorf("student %q: duplicate email %q", s.Name, s.Email)
		}
		emails[s.Email] = true
	}

	for _, u := range d.Users {
		if u.Email == "" {
			return fmt.Errorf("user %q: email is required", u.Name)
		}
	}

	for _, e := range d.Evaluations {
		if _, err := time.Parse(DateLayout, e.Date); err != nil {
			return fmt.Errorf("evaluation %q: invalid date %q", e.Description, e.Date)
		}
	}
	return nil
}
