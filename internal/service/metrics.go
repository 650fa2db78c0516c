package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_created_total",
		Help: "Documents created, by type.",
	}, []string{"type"})

	documentsSigned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_signed_total",
		Help: "Documents signed, by type.",
	}, []string{"type"})

	paymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Payments recorded against invoices.",
	})
)
