package journey

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a declarative run plan loaded from YAML. It maps to journeys via
// Build, which resolves each action name to a step from the step library.
type Plan struct {
	Journeys []PlanJourney `yaml:"journeys"`
}

// PlanJourney is one journey entry in a plan file.
type PlanJourney struct {
	Name  string     `yaml:"name"`
	Steps []PlanStep `yaml:"steps"`
}

// PlanStep is one declarative action. Only the fields the action needs are set.
type PlanStep struct {
	Action   string   `yaml:"action"`             // register, login, add-to-cart, ...
	Product  string   `yaml:"product,omitempty"`  // product page path
	Products []string `yaml:"products,omitempty"` // multiple product page paths
	Query    string   `yaml:"query,omitempty"`    // search query
	Quantity int      `yaml:"quantity,omitempty"` // cart quantity
	Items    []string `yaml:"items,omitempty"`    // expected product names
}

// LoadPlan reads and validates a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from cli flag
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes plan YAML. Unknown fields are rejected so a typo in an
// action parameter fails loudly instead of silently producing an empty step.
func ParsePlan(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("plan is empty")
		}
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if len(p.Journeys) == 0 {
		return nil, errors.New("plan has no journeys")
	}
	for i, j := range p.Journeys {
		if j.Name == "" {
			return nil, fmt.Errorf("journey %d has no name", i)
		}
		if len(j.Steps) == 0 {
			return nil, fmt.Errorf("journey %q has no steps", j.Name)
		}
		for si, s := range j.Steps {
			if s.Action == "" {
				return nil, fmt.Errorf("journey %q step %d has no action", j.Name, si)
			}
		}
	}
	return &p, nil
}

// Build converts the plan into runnable journeys. Each journey gets its own
// generated user so plan runs never collide on registered accounts.
func (p *Plan) Build() ([]Journey, error) {
	journeys := make([]Journey, 0, len(p.Journeys))
	for _, pj := range p.Journeys {
		j := Journey{Name: pj.Name}
		for _, ps := range pj.Steps {
			step, err := buildStep(ps)
			if err != nil {
				return nil, fmt.Errorf("journey %q: %w", pj.Name, err)
			}
			j.Steps = append(j.Steps, step)
		}
		journeys = append(journeys, j)
	}
	return journeys, nil
}

func buildStep(ps PlanStep) (Step, error) {
	switch ps.Action {
	case "register":
		return RegisterUser(), nil
	case "login":
		return Login(), nil
	case "logout":
		return Logout(), nil
	case "add-to-cart":
		paths := ps.Products
		if ps.Product != "" {
			paths = append(paths, ps.Product)
		}
		if len(paths) == 0 {
			return Step{}, errors.New("add-to-cart needs product or products")
		}
		return AddToCart(paths...), nil
	case "add-to-wishlist":
		if ps.Product == "" {
			return Step{}, errors.New("add-to-wishlist needs product")
		}
		return AddToWishlist(ps.Product), nil
	case "add-to-compare":
		if ps.Product == "" {
			return Step{}, errors.New("add-to-compare needs product")
		}
		return AddToCompare(ps.Product), nil
	case "set-quantity":
		if ps.Product == "" || ps.Quantity <= 0 {
			return Step{}, errors.New("set-quantity needs product and positive quantity")
		}
		return SetQuantity(ps.Product, ps.Quantity), nil
	case "verify-cart":
		return VerifyCart(ps.Items...), nil
	case "verify-cart-totals":
		return VerifyCartTotals(), nil
	case "clear-cart":
		return ClearCart(), nil
	case "search":
		if ps.Query == "" {
			return Step{}, errors.New("search needs query")
		}
		return SearchFor(ps.Query, ps.Items...), nil
	case "checkout":
		return CompleteCheckout(), nil
	default:
		return Step{}, fmt.Errorf("unknown action %q", ps.Action)
	}
}
