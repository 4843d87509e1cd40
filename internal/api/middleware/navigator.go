package middleware

import (
	"sync"

	"github.com/labstack/echo/v4"
)

const navigatorKey = "navigator"

// Navigator records the first navigation requested while a request is
// handled. Later requests are ignored.
type Navigator struct {
	mu     sync.Mutex
	target string
}

func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.target == "" {
		n.target = path
	}
}

// Target returns the recorded path, if any.
func (n *Navigator) Target() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target
}

// NavigatorFrom returns the navigator bound by Session.
func NavigatorFrom(c echo.Context) *Navigator {
	n, _ := c.Get(navigatorKey).(*Navigator)
	return n
}
