package config

import (
	"io"
	"os"
	"os/user"

	"github.com/valyala/fasttemplate"
)

const (
	TMPL_HOSTNAME = "hostname"
	TMPL_USER     = "user"
)

// TemplateVars returns the values available to device_name placeholders.
func TemplateVars() map[string]string {
	vars := map[string]string{
		TMPL_HOSTNAME: "localhost",
		TMPL_USER:     "user",
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		vars[TMPL_HOSTNAME] = hostname
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		vars[TMPL_USER] = u.Username
	}
	return vars
}

// RenderTemplate expands {{name}} placeholders. Unknown placeholders are
// kept verbatim.
func RenderTemplate(template string, vars map[string]string) string {
	t, err := fasttemplate.NewTemplate(template, "{{", "}}")
	if err != nil {
		return template
	}
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if value, ok := vars[tag]; ok {
			return w.Write([]byte(value))
		}
		return w.Write([]byte("{{" + tag + "}}"))
	})
}

// RenderedDeviceName returns the device name with placeholders expanded.
func (a *AppConfig) RenderedDeviceName() string {
	return RenderTemplate(a.DeviceName, TemplateVars())
}
