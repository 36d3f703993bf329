package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the auth-flow events worth alerting on. Registered once at
// startup via promauto against the default registry, exposed at /metrics.
type Metrics struct {
	Signups          prometheus.Counter
	Logins           prometheus.Counter
	OTPsIssued       prometheus.Counter
	OTPValidations   *prometheus.CounterVec // result: "ok" | "rejected"
	TokensIssued     prometheus.Counter
	MailSendFailures prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Signups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sangrah_signups_total",
			Help: "Total number of accounts created via self-service signup",
		}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sangrah_logins_total",
			Help: "Total number of successful password checks on login",
		}),
		OTPsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sangrah_otps_issued_total",
			Help: "Total number of one-time codes issued",
		}),
		OTPValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sangrah_otp_validations_total",
			Help: "OTP validation attempts by result",
		}, []string{"result"}),
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sangrah_tokens_issued_total",
			Help: "Total number of session tokens issued",
		}),
		MailSendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sangrah_mail_send_failures_total",
			Help: "Best-effort mail deliveries that failed",
		}),
	}
}

func (m *Metrics) ObserveOTPValidation(ok bool) {
	if ok {
		m.OTPValidations.WithLabelValues("ok").Inc()
		return
	}
	m.OTPValidations.WithLabelValues("rejected").Inc()
}
