package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
	assert.Same(t, App(), App())
	assert.Same(t, Search(), Search())
}

func TestSearchObserve(t *testing.T) {
	m := Search()
	m.Requests.Reset()
	m.Errors.Reset()

	m.Observe("posts", "search", time.Now(), nil)
	m.Observe("posts", "search", time.Now(), errors.New("timeout"))
	m.Observe("users", "index", time.Now(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("posts", "search", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("posts", "search", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("posts", "search")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Errors.WithLabelValues("users", "index")))
}
