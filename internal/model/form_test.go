package model

import "testing"

func TestFieldAnswerValidate(t *testing.T) {
	cases := []struct {
		name    string
		answer  FieldAnswer
		wantErr bool
	}{
		{"text", FieldAnswer{FieldID: "f1", Type: FieldText, Text: "hello"}, false},
		{"number", FieldAnswer{FieldID: "f2", Type: FieldNumber, Number: 3}, false},
		{"choice", FieldAnswer{FieldID: "f3", Type: FieldChoice, Choice: "a"}, false},
		{"boolean", FieldAnswer{FieldID: "f4", Type: FieldBoolean, Bool: true}, false},
		{"date ok", FieldAnswer{FieldID: "f5", Type: FieldDate, Date: "2026-03-02"}, false},
		{"date malformed", FieldAnswer{FieldID: "f5", Type: FieldDate, Date: "2.3.2026"}, true},
		{"unknown type", FieldAnswer{FieldID: "f6", Type: "blob"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.answer.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestEncodeDecodeAnswers(t *testing.T) {
	answers := []FieldAnswer{
		{FieldID: "allergies", Type: FieldText, Text: "none"},
		{FieldID: "siblings", Type: FieldNumber, Number: 2},
	}
	raw, err := EncodeAnswers(answers)
	if err != nil {
		t.Fatalf("EncodeAnswers: %v", err)
	}
	back, err := DecodeAnswers(raw)
	if err != nil {
		t.Fatalf("DecodeAnswers: %v", err)
	}
	if len(back) != 2 || back[0].FieldID != "allergies" || back[1].Number != 2 {
		t.Fatalf("round trip mismatch: %+v", back)
	}

	empty, err := EncodeAnswers(nil)
	if err != nil || empty != "" {
		t.Fatalf("EncodeAnswers(nil) = %q, %v; want empty", empty, err)
	}
}
