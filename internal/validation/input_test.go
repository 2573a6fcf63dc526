package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJobTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"ok", "Лендинг для кофейни", false},
		{"пустой", "   ", true},
		{"короткий", "ab", true},
		{"кириллица считается по символам", strings.Repeat("я", MaxJobTitleLength), false},
		{"длинный", strings.Repeat("a", MaxJobTitleLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobTitle(tt.title)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWalletAddress(t *testing.T) {
	assert.NoError(t, ValidateWalletAddress("TRC20:TXabcdefghijklmnop123"))
	assert.NoError(t, ValidateWalletAddress("  0x52908400098527886E0F7030069857D2E4169EE7  "))
	assert.Error(t, ValidateWalletAddress(""))
	assert.Error(t, ValidateWalletAddress("short"))
	assert.Error(t, ValidateWalletAddress("TRC20 TXabcdefghijklmnop123"))
	assert.Error(t, ValidateWalletAddress(strings.Repeat("a", MaxWalletAddressLength+1)))
}

func TestValidateOptionalFields(t *testing.T) {
	assert.NoError(t, ValidateBio(nil))
	long := strings.Repeat("б", MaxBioLength+1)
	assert.Error(t, ValidateBio(&long))
	assert.NoError(t, ValidateComment(nil))

	blank := "   "
	assert.Nil(t, Optional(&blank))
	padded := " текст "
	require.NotNil(t, Optional(&padded))
	assert.Equal(t, "текст", *Optional(&padded))
}

func TestNormalizeSkillNames(t *testing.T) {
	names, err := NormalizeSkillNames([]string{" Go ", "go", "PostgreSQL", "GO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, names)

	tooMany := make([]string, MaxSkillsCount+1)
	for i := range tooMany {
		tooMany[i] = strings.Repeat("x", i+1)
	}
	_, err = NormalizeSkillNames(tooMany)
	assert.Error(t, err)

	_, err = NormalizeSkillNames([]string{"Go", "  "})
	assert.Error(t, err)
}
