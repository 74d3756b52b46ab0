package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name    string
		cpf     string
		wantErr bool
	}{
		{"valid bare", "52998224725", false},
		{"valid masked", "529.982.247-25", false},
		{"valid with stray spaces", " 529.982.247-25 ", false},
		{"too short", "5299822472", true},
		{"too long", "529982247250", true},
		{"all digits equal", "11111111111", true},
		{"all digits equal masked", "000.000.000-00", true},
		{"first check digit wrong", "52998224735", true},
		{"second check digit wrong", "52998224726", true},
		{"letters only", "abcdefghijk", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCPF(tt.cpf)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "52998224725", NormalizeCPF("529.982.247-25"))
	assert.Equal(t, "52998224725", NormalizeCPF("52998224725"))
	assert.Equal(t, "", NormalizeCPF("no digits here"))
}

func TestValidateBadge(t *testing.T) {
	assert.NoError(t, ValidateBadge("4521"))
	assert.NoError(t, ValidateBadge("0001"))
	assert.NoError(t, ValidateBadge(" 4521 "))

	assert.Error(t, ValidateBadge(""))
	assert.Error(t, ValidateBadge("AB-12"))
	assert.Error(t, ValidateBadge("45 21"))
	assert.Error(t, ValidateBadge("45.21"))
}

func TestValidatePaginationParams(t *testing.T) {
	limit, offset := ValidatePaginationParams(0, 0)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, offset = ValidatePaginationParams(5000, -3)
	assert.Equal(t, 1000, limit)
	assert.Equal(t, 0, offset)

	limit, offset = ValidatePaginationParams(25, 100)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 100, offset)
}
