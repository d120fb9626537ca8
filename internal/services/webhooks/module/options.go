package module

import "devecho/internal/platform/config"

// Options holds configuration settings for the webhooks module
type Options struct {
	Secret string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	wf := cfg.Prefix("CORE_WEBHOOK_")
	return Options{
		Secret: wf.MayString("SECRET", ""),
	}
}
