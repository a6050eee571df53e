package password

import "testing"

func TestDefaultPolicyValidate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all requirements met", "Sup3r$ecret", true},
		{"too short", "S3c$r", false},
		{"no upper", "sup3r$ecret", false},
		{"no lower", "SUP3R$ECRET", false},
		{"no digit", "Super$ecret", false},
		{"no symbol", "Sup3rSecret", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reasons := DefaultPolicy.Validate(tt.password)
			if ok != tt.want {
				t.Errorf("ok = %v (reasons %v), want %v", ok, reasons, tt.want)
			}
			if !ok && len(reasons) == 0 {
				t.Error("rejection must carry at least one reason")
			}
		})
	}
}

func TestRelaxedPolicy(t *testing.T) {
	relaxed := Policy{MinLength: 4}
	if ok, reasons := relaxed.Validate("abcd"); !ok {
		t.Errorf("relaxed policy rejected %v", reasons)
	}
}
