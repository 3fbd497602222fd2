package models

import (
	"testing"

	"github.com/segmentio/encoding/json"
)

func TestVerdict_MarshalJSON(t *testing.T) {
	cases := []struct {
		verdict Verdict
		want    string
	}{
		{VerdictPassed, "true"},
		{VerdictFailed, "false"},
		{VerdictSkipped, "null"},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.verdict)
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.verdict, err)
		}
		if string(data) != tc.want {
			t.Errorf("marshal %v = %s, want %s", tc.verdict, data, tc.want)
		}
	}
}

func TestVerdict_UnmarshalJSON_RoundTrip(t *testing.T) {
	for _, v := range []Verdict{VerdictFailed, VerdictPassed, VerdictSkipped} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got Verdict
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != v {
			t.Errorf("round trip %v: got %v", v, got)
		}
	}
}

func TestVerdict_UnmarshalJSON_Invalid(t *testing.T) {
	var v Verdict
	if err := v.UnmarshalJSON([]byte(`"passed"`)); err == nil {
		t.Error("expected error for string verdict")
	}
}

func TestVerdict_UnmarshalJSON_InsideOutcome(t *testing.T) {
	var o CheckOutcome
	if err := json.Unmarshal([]byte(`{"check":"api_verify","passed":null,"skipped":true}`), &o); err != nil {
		t.Fatalf("unmarshal outcome: %v", err)
	}
	if o.Passed != VerdictSkipped {
		t.Errorf("passed = %v, want skipped", o.Passed)
	}
	if !o.Skipped {
		t.Error("skipped flag should survive round trip")
	}
}

func TestCheckOutcome_Satisfied(t *testing.T) {
	cases := []struct {
		name    string
		outcome CheckOutcome
		want    bool
	}{
		{"passed", CheckOutcome{Passed: VerdictPassed}, true},
		{"failed", CheckOutcome{Passed: VerdictFailed}, false},
		{"skipped verdict", CheckOutcome{Passed: VerdictSkipped}, true},
		{"skipped flag", CheckOutcome{Passed: VerdictFailed, Skipped: true}, true},
	}
	for _, tc := range cases {
		if got := tc.outcome.Satisfied(); got != tc.want {
			t.Errorf("%s: Satisfied() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResultDocument_AllSatisfied(t *testing.T) {
	doc := ResultDocument{
		Checks: []CheckOutcome{
			{Passed: VerdictPassed},
			{Passed: VerdictSkipped, Skipped: true},
		},
	}
	if !doc.AllSatisfied() {
		t.Error("passed + skipped checks should satisfy the run")
	}

	doc.Checks = append(doc.Checks, CheckOutcome{Passed: VerdictFailed})
	if doc.AllSatisfied() {
		t.Error("a failed check should fail the run")
	}
}
