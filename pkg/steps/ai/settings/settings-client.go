package settings

import (
	"net/http"
	"time"

	"github.com/huandu/go-clone"
)

type ClientSettings struct {
	Timeout    *time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	HTTPClient *http.Client   `yaml:"-" json:"-"`
}

func NewClientSettings() *ClientSettings {
	defaultTimeout := 60 * time.Second
	return &ClientSettings{
		Timeout: &defaultTimeout,
	}
}

// Client returns the configured http.Client, or a new one with the configured timeout.
func (cs *ClientSettings) Client() *http.Client {
	if cs == nil {
		return http.DefaultClient
	}
	if cs.HTTPClient != nil {
		return cs.HTTPClient
	}
	c := &http.Client{}
	if cs.Timeout != nil {
		c.Timeout = *cs.Timeout
	}
	return c
}

func (cs *ClientSettings) Clone() *ClientSettings {
	httpClient := cs.HTTPClient
	ret := clone.Clone(&ClientSettings{Timeout: cs.Timeout}).(*ClientSettings)
	ret.HTTPClient = httpClient
	return ret
}
