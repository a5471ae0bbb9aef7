package navigation

import (
	"fmt"
	"net/url"
)

// NavigateOptions configures navigation behavior.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Params are query parameters to add to the URL.
	Params map[string]any

	// Scroll controls whether to scroll to top after navigation.
	// Defaults to true.
	Scroll bool
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithParams adds query parameters to the navigation URL.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

// WithoutScroll disables scrolling to top after navigation.
func WithoutScroll() NavigateOption {
	return func(o *NavigateOptions) {
		o.Scroll = false
	}
}

func newNavigateOptions(opts []NavigateOption) NavigateOptions {
	options := NavigateOptions{
		Scroll: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// buildURL adds o.Params to href.
func (o NavigateOptions) buildURL(href string) (string, error) {
	if len(o.Params) == 0 {
		return href, nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid path: %s", href)
	}
	q := u.Query()
	for k, v := range o.Params {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
