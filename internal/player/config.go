package player

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cenkalti/backoff/v5"

	"github.com/moviola/moviola/internal/renderer"
)

// Backoff policy names accepted by Config.SeekRetryBackoff.
const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// Config carries the engine's tunables. All of them ship with defaults that
// match observed production behavior; none are load-bearing constants. The
// env tags let operating surfaces override any of them through MOVIOLA_*
// variables without a code change.
type Config struct {
	// SeekRetryLimit is how many additional Goto attempts follow a failed
	// seek before recovery gives up.
	SeekRetryLimit int `env:"SEEK_RETRY_LIMIT" envDefault:"3"`

	// SeekSkipMs is added to the previous target on every retry, skipping
	// past the frame that refused to reconstruct.
	SeekSkipMs int64 `env:"SEEK_SKIP_MS" envDefault:"100"`

	// SeekRetryDelay paces retry attempts.
	SeekRetryDelay time.Duration `env:"SEEK_RETRY_DELAY" envDefault:"50ms"`

	// SeekRetryBackoff selects the retry delay policy: constant or
	// exponential. Exponential helps when goto failures come from a
	// stalled asset fetch rather than a broken frame.
	SeekRetryBackoff string `env:"SEEK_RETRY_BACKOFF" envDefault:"constant"`

	// ListenerAttachDelay is how long after construction renderer
	// listeners are attached. Renderers do not reliably accept listeners
	// synchronously.
	ListenerAttachDelay time.Duration `env:"LISTENER_ATTACH_DELAY" envDefault:"10ms"`

	// HighlightDecay is how long a clicked marker stays highlighted.
	HighlightDecay time.Duration `env:"HIGHLIGHT_DECAY" envDefault:"2s"`

	// MinSpeed and MaxSpeed bound accepted playback multipliers.
	MinSpeed float64 `env:"MIN_SPEED" envDefault:"0.25"`
	MaxSpeed float64 `env:"MAX_SPEED" envDefault:"16"`

	// SkipStepMs is the relative jump used by skip-forward/skip-backward
	// surfaces (the arrow keys in the terminal player).
	SkipStepMs int64 `env:"SKIP_STEP_MS" envDefault:"10000"`

	// SpeedOptions is the multiplier ladder UIs offer.
	SpeedOptions []float64 `env:"SPEED_OPTIONS" envDefault:"0.25,0.5,1,2,4,8,16" envSeparator:","`

	// ShowMouseTrail and MouseTrailColor style the replay pointer path.
	ShowMouseTrail  bool   `env:"MOUSE_TRAIL" envDefault:"true"`
	MouseTrailColor string `env:"MOUSE_TRAIL_COLOR" envDefault:"#4f46e5"`
}

// DefaultConfig returns the tunables the product ships with.
func DefaultConfig() Config {
	return Config{
		SeekRetryLimit:      3,
		SeekSkipMs:          100,
		SeekRetryDelay:      50 * time.Millisecond,
		SeekRetryBackoff:    BackoffConstant,
		ListenerAttachDelay: 10 * time.Millisecond,
		HighlightDecay:      2 * time.Second,
		MinSpeed:            0.25,
		MaxSpeed:            16,
		SkipStepMs:          10000,
		SpeedOptions:        []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		ShowMouseTrail:      true,
		MouseTrailColor:     "#4f46e5",
	}
}

// ConfigFromEnv builds the shipped configuration with MOVIOLA_* environment
// overrides applied.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "MOVIOLA_"}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run on.
func (c Config) Validate() error {
	if c.SeekRetryLimit < 0 {
		return fmt.Errorf("seek retry limit must not be negative, got %d", c.SeekRetryLimit)
	}
	if c.SeekSkipMs <= 0 {
		return fmt.Errorf("seek skip must be positive, got %d", c.SeekSkipMs)
	}
	if c.SeekRetryBackoff != BackoffConstant && c.SeekRetryBackoff != BackoffExponential {
		return fmt.Errorf("unknown seek retry backoff %q", c.SeekRetryBackoff)
	}
	if c.MinSpeed <= 0 {
		return fmt.Errorf("min speed must be positive, got %v", c.MinSpeed)
	}
	if c.MaxSpeed < c.MinSpeed {
		return fmt.Errorf("max speed %v below min speed %v", c.MaxSpeed, c.MinSpeed)
	}
	if c.HighlightDecay <= 0 {
		return fmt.Errorf("highlight decay must be positive, got %v", c.HighlightDecay)
	}
	return nil
}

// seekBackOff builds the retry delay policy for one seek.
func (c Config) seekBackOff() backoff.BackOff {
	if c.SeekRetryBackoff == BackoffExponential {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.SeekRetryDelay
		b.RandomizationFactor = 0
		b.Multiplier = 2
		return b
	}
	return backoff.NewConstantBackOff(c.SeekRetryDelay)
}

// rendererConfig maps the player tunables onto the renderer contract.
// Autoplay stays off unconditionally: playback state has exactly one owner.
func (c Config) rendererConfig() renderer.Config {
	return renderer.Config{
		Autoplay:        false,
		SpeedOptions:    append([]float64(nil), c.SpeedOptions...),
		ShowMouseTrail:  c.ShowMouseTrail,
		MouseTrailColor: c.MouseTrailColor,
	}
}
