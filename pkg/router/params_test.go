package router

import (
	"strings"
	"testing"
)

func TestVariablesBind(t *testing.T) {
	type orderParams struct {
		Account int64   `param:"accountNumber"`
		Order   string  `param:"orderNumber"`
		Page    uint16  `param:"page"`
		Ratio   float64 `param:"ratio"`
		Gift    bool    `param:"gift"`
		Missing string  `param:"missing"`
		Ignored string
	}

	vars := Variables{
		"accountNumber": "23905",
		"orderNumber":   "gtm679",
		"page":          "3",
		"ratio":         "0.5",
		"gift":          "true",
	}

	p := orderParams{Missing: "keep"}
	if err := vars.Bind(&p); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if p.Account != 23905 {
		t.Errorf("Account = %d, want 23905", p.Account)
	}
	if p.Order != "gtm679" {
		t.Errorf("Order = %q, want gtm679", p.Order)
	}
	if p.Page != 3 {
		t.Errorf("Page = %d, want 3", p.Page)
	}
	if p.Ratio != 0.5 {
		t.Errorf("Ratio = %v, want 0.5", p.Ratio)
	}
	if !p.Gift {
		t.Error("Gift should be true")
	}
	if p.Missing != "keep" {
		t.Errorf("Missing = %q, absent variables must not overwrite", p.Missing)
	}
}

func TestVariablesBindErrors(t *testing.T) {
	tests := []struct {
		name    string
		vars    Variables
		target  any
		wantErr string
	}{
		{
			name:    "not a pointer",
			target:  struct{}{},
			wantErr: "target must be a pointer",
		},
		{
			name:    "pointer to non-struct",
			target:  new(int),
			wantErr: "pointer to struct",
		},
		{
			name: "bad integer",
			vars: Variables{"id": "gtm679"},
			target: &struct {
				ID int `param:"id"`
			}{},
			wantErr: `binding variable "id": invalid integer`,
		},
		{
			name: "int overflow",
			vars: Variables{"id": "300"},
			target: &struct {
				ID int8 `param:"id"`
			}{},
			wantErr: "invalid integer",
		},
		{
			name: "unsupported type",
			vars: Variables{"id": "1"},
			target: &struct {
				ID []string `param:"id"`
			}{},
			wantErr: "unsupported type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vars.Bind(tt.target)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestVariablesBindNil(t *testing.T) {
	if err := (Variables{}).Bind(nil); err != nil {
		t.Errorf("Bind(nil) = %v, want nil", err)
	}
}

func TestVariablesClone(t *testing.T) {
	v := Variables{"a": "1"}
	c := v.Clone()
	c["a"] = "2"
	if v["a"] != "1" {
		t.Error("Clone must not share storage")
	}
	if Variables(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
