package metrics

import "github.com/prometheus/client_golang/prometheus"

var reg = prometheus.DefaultRegisterer

// Registerer returns where collector groups register on first use.
func Registerer() prometheus.Registerer { return reg }

// UseRegisterer swaps the registerer used by collector groups that have not
// been created yet. Call it before the first accessor.
func UseRegisterer(r prometheus.Registerer) {
	if r != nil {
		reg = r
	}
}

// Bind points every collector group at r and creates them, so they are all
// exported from the first scrape even before the listener touches them.
// Groups created earlier stay on their original registerer.
func Bind(r prometheus.Registerer) {
	UseRegisterer(r)
	_ = App()
	_ = Listener()
	_ = Chain()
	_ = Publisher()
}
