package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderWelcome(t *testing.T) {
	tests := []struct {
		name      string
		info      WelcomeInfo
		termWidth int
		wantLogo  bool
		wantTexts []string
	}{
		{
			name: "full info with wide terminal",
			info: WelcomeInfo{
				Version:        "1.0.0",
				Completor:      "ReplTypeCompletor",
				RuntimeVersion: "3.4.0",
			},
			termWidth: 80,
			wantLogo:  true,
			wantTexts: []string{"typecomp", "version:   1.0.0", "completor: ReplTypeCompletor", "runtime:   3.4.0", "tip:"},
		},
		{
			name:      "dev version without runtime",
			info:      WelcomeInfo{Version: "dev", Completor: "RegexpCompletor"},
			termWidth: 80,
			wantLogo:  true,
			wantTexts: []string{"development", "runtime:   unknown"},
		},
		{
			name:      "narrow terminal - no logo",
			info:      WelcomeInfo{Version: "1.0.0", Completor: "ReplTypeCompletor"},
			termWidth: 30,
			wantLogo:  false,
			wantTexts: []string{"typecomp", "completor: ReplTypeCompletor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			RenderWelcome(&buf, tt.info, tt.termWidth)
			output := buf.String()

			for _, text := range tt.wantTexts {
				assert.Contains(t, output, text, "output should contain %q", text)
			}
			assert.Equal(t, tt.wantLogo, strings.Contains(output, "|__/"))
		})
	}
}

func TestRenderWelcome_TwoColumnLayout(t *testing.T) {
	var buf bytes.Buffer
	RenderWelcome(&buf, WelcomeInfo{Version: "1.0.0", Completor: "ReplTypeCompletor", RuntimeVersion: "3.4.0"}, 80)

	foundTwoColumn := false
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "|") && strings.Contains(line, "version") {
			foundTwoColumn = true
			break
		}
	}
	assert.True(t, foundTwoColumn, "logo and info should share lines")
}

func TestGetTipOfTheDay(t *testing.T) {
	tip := getTipOfTheDay()
	assert.NotEmpty(t, tip)
	assert.Contains(t, tips, tip)
	assert.Equal(t, tip, getTipOfTheDay(), "tip should be stable within a day")
}
