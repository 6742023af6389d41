package audio

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// IsCI reports whether we're running in a CI environment or mock audio was
// requested through TYPEDTEXT_MOCK_AUDIO.
func IsCI() bool {
	ciVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
		"DRONE",
		"TEAMCITY_VERSION",
	}
	for _, v := range ciVars {
		if val := os.Getenv(v); val != "" && val != "false" {
			log.Debug("CI environment detected", "variable", v)
			return true
		}
	}
	return os.Getenv("TYPEDTEXT_MOCK_AUDIO") == "true"
}

// NewContext creates an audio context of the given type.
func NewContext(t ContextType) (Context, error) {
	switch t {
	case ContextProduction:
		ctx, err := NewProductionContext()
		if err != nil {
			return nil, err
		}
		return ctx, nil
	case ContextMock:
		return NewMockContext(), nil
	case ContextAuto:
		if IsCI() {
			log.Info("using mock audio context", "reason", "CI environment")
			return NewMockContext(), nil
		}
		ctx, err := NewProductionContext()
		if err != nil {
			log.Warn("audio device unavailable, falling back to mock", "err", err)
			return NewMockContext(), nil
		}
		return ctx, nil
	default:
		return nil, fmt.Errorf("unknown audio context type: %v", t)
	}
}
