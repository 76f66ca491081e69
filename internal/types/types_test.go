package types

import "testing"

func TestHigherSymmetric(t *testing.T) {
	pairs := []*Descriptor{TimestampD, DateD, NumericD, TextD, UnknownD}
	for _, a := range pairs {
		for _, b := range pairs {
			if Higher(a, b) != Higher(b, a) {
				t.Errorf("Higher(%v,%v) != Higher(%v,%v)", a.Tag, b.Tag, b.Tag, a.Tag)
			}
		}
	}
}

func TestHigherPrecedenceOrder(t *testing.T) {
	if Higher(TimestampD, DateD) != TimestampD {
		t.Errorf("TIMESTAMP should outrank DATE")
	}
	if Higher(DateD, NumericD) != DateD {
		t.Errorf("DATE should outrank NUMERIC")
	}
	if Higher(NumericD, TextD) != NumericD {
		t.Errorf("NUMERIC should outrank TEXT")
	}
}

func TestArithmeticDatePlusNumeric(t *testing.T) {
	if got := Arithmetic(DateD, NumericD, false); got.Tag != Date {
		t.Errorf("DATE+NUMERIC = %v, want DATE", got.Tag)
	}
	if got := Arithmetic(NumericD, DateD, false); got.Tag != Date {
		t.Errorf("NUMERIC+DATE = %v, want DATE", got.Tag)
	}
}

func TestArithmeticDateMinusDate(t *testing.T) {
	if got := Arithmetic(DateD, DateD, true); got.Tag != Numeric {
		t.Errorf("DATE-DATE = %v, want NUMERIC", got.Tag)
	}
}

func TestArithmeticNullPropagates(t *testing.T) {
	if got := Arithmetic(NullD, NumericD, false); got.Tag != Null {
		t.Errorf("NULL+NUMERIC = %v, want NULL", got.Tag)
	}
}

func TestParseSimpleSourceType(t *testing.T) {
	cases := map[string]Tag{
		"NUMBER":    Numeric,
		"VARCHAR2":  Text,
		"DATE":      Date,
		"TIMESTAMP": Timestamp,
		"CLOB":      LOBText,
		"BLOB":      LOBBinary,
		"BOOLEAN":   Boolean,
	}
	for name, want := range cases {
		got := ParseSimpleSourceType(name, 0, 0, 0, false, false, false)
		if got.Tag != want {
			t.Errorf("ParseSimpleSourceType(%q) = %v, want %v", name, got.Tag, want)
		}
	}
}

func TestTargetTypeTextCollectionAndRecordAreJSONB(t *testing.T) {
	if TargetTypeText(NewCollection(NumericD)) != "jsonb" {
		t.Errorf("collection should map to jsonb")
	}
	if TargetTypeText(NewRecord(nil)) != "jsonb" {
		t.Errorf("record should map to jsonb")
	}
}

func TestValidateDateLiteralText(t *testing.T) {
	if !ValidateDateLiteralText("2024-01-15", false) {
		t.Errorf("valid date literal should validate")
	}
	if ValidateDateLiteralText("not-a-date", false) {
		t.Errorf("invalid date literal should not validate")
	}
	if !ValidateDateLiteralText("2024-01-15 10:30:00", true) {
		t.Errorf("valid timestamp literal should validate")
	}
}

func TestNumericLiteralValue(t *testing.T) {
	d, err := NumericLiteralValue("123.45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "123.45" {
		t.Errorf("got %s, want 123.45", d.String())
	}
}
