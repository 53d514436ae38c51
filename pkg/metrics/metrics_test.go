package metrics

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveHTTPRequest(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry(), "test")

	m.ObserveHTTPRequest("POST", "/api/v1/slots/{slotId}/hold", 409, 10*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/v1/slots/{slotId}/hold", 409, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/slots/{slotId}/hold", "409")))
}

func TestObserveDBQuery_NoRowsIsNotAnError(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry(), "test")

	m.ObserveDBQuery("query_row", sql.ErrNoRows, time.Millisecond)
	m.ObserveDBQuery("exec", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.DBQueryDuration.WithLabelValues("query_row", "ok").(prometheus.Histogram)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DBQueryDuration.WithLabelValues("exec", "error").(prometheus.Histogram)))
}

func TestObserveJobAndMaterialized(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry(), "test")

	m.ObserveJob("materialize-all", nil, time.Second)
	m.ObserveJob("materialize-all", errors.New("db down"), time.Second)
	m.AddMaterializedSlots(3)
	m.AddMaterializedSlots(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("materialize-all", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("materialize-all", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SlotsMaterialized))
}
