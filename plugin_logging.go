package reqflow

import (
	"net/http"

	"github.com/rs/zerolog"
)

// LoggingPlugin writes one zerolog line per lifecycle event. It never
// stops dispatch.
type LoggingPlugin struct {
	log zerolog.Logger
	// Level for successful events; errors are always logged at warn.
	Level zerolog.Level
}

// NewLoggingPlugin logs through l at info level.
func NewLoggingPlugin(l zerolog.Logger) *LoggingPlugin {
	return &LoggingPlugin{log: l, Level: zerolog.InfoLevel}
}

func (p *LoggingPlugin) PreRequest(req *http.Request) Action {
	p.log.WithLevel(p.Level).
		Str("event", string(PreRequest)).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("request")
	return Continue
}

func (p *LoggingPlugin) PostRequestSuccess(resp *Response) Action {
	p.log.WithLevel(p.Level).
		Str("event", string(PostRequestSuccess)).
		Int("status", resp.StatusCode).
		Str("url", resp.URL).
		Dur("dur", resp.Duration).
		Int("bytes", len(resp.Body)).
		Msg("response")
	return Continue
}

func (p *LoggingPlugin) PostRequestError(resp *Response) Action {
	z := p.log.Warn().
		Str("event", string(PostRequestError)).
		Int("status", resp.StatusCode).
		Str("url", resp.URL).
		Dur("dur", resp.Duration)
	if resp.Err != nil {
		z = z.Err(resp.Err)
	}
	z.Msg("request failed")
	return Continue
}

func (p *LoggingPlugin) PostRequest(resp *Response) Action {
	p.log.Debug().
		Str("event", string(PostRequest)).
		Str("url", resp.URL).
		Msg("request complete")
	return Continue
}
