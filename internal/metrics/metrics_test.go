package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLedgerOperationLabelsResult(t *testing.T) {
	ok := testutil.ToFloat64(ledgerOperations.WithLabelValues("confirm_deposit", ResultOK))
	failed := testutil.ToFloat64(ledgerOperations.WithLabelValues("confirm_deposit", ResultError))

	LedgerOperation("confirm_deposit", nil)
	LedgerOperation("confirm_deposit", errors.New("конфликт"))
	LedgerOperation("confirm_deposit", nil)

	assert.Equal(t, ok+2, testutil.ToFloat64(ledgerOperations.WithLabelValues("confirm_deposit", ResultOK)))
	assert.Equal(t, failed+1, testutil.ToFloat64(ledgerOperations.WithLabelValues("confirm_deposit", ResultError)))
}

func TestWSSlowClient(t *testing.T) {
	before := testutil.ToFloat64(wsSlowClients)
	WSSlowClient()
	assert.Equal(t, before+1, testutil.ToFloat64(wsSlowClients))
}
