// Package metrics exposes the active relay connection's TCP_INFO snapshot
// as Prometheus counters and an RTT gauge, for an optional /metrics
// endpoint.
package metrics

import (
	"fmt"
	"net"
	"sync"

	"github.com/higebu/netfd"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rockcat/slapi-bridge/internal/netstats/tcpinfo"
)

type metric struct {
	desc     *prometheus.Desc
	valueFn  func(*tcpinfo.Info) float64
	valueTyp prometheus.ValueType
}

type connEntry struct {
	fd     int
	labels []string
}

// RelayCollector is a prometheus.Collector that reports TCP_INFO for every
// relay connection currently registered with Add.
type RelayCollector struct {
	mu        sync.Mutex
	conns     map[net.Conn]connEntry
	onError   func(error)
	labelKeys []string
	metrics   []metric
}

// NewRelayCollector builds a collector whose per-connection metrics carry
// labelKeys (values supplied per-connection via Add) plus constLabels
// (fixed for the process lifetime, e.g. hostname).
func NewRelayCollector(labelKeys []string, constLabels prometheus.Labels, onError func(error)) *RelayCollector {
	c := &RelayCollector{
		conns:     make(map[net.Conn]connEntry),
		onError:   onError,
		labelKeys: labelKeys,
	}
	c.metrics = []metric{
		{
			desc:     prometheus.NewDesc("slapi_relay_tcp_retransmits_total", "Retransmitted segments on the relay connection.", labelKeys, constLabels),
			valueFn:  func(i *tcpinfo.Info) float64 { return float64(i.TotalRetrans) },
			valueTyp: prometheus.CounterValue,
		},
		{
			desc:     prometheus.NewDesc("slapi_relay_tcp_rtt_seconds", "Smoothed round-trip time on the relay connection.", labelKeys, constLabels),
			valueFn:  func(i *tcpinfo.Info) float64 { return i.RTT.Seconds() },
			valueTyp: prometheus.GaugeValue,
		},
		{
			desc:     prometheus.NewDesc("slapi_relay_tcp_bytes_acked_total", "Bytes acked on the relay connection.", labelKeys, constLabels),
			valueFn:  func(i *tcpinfo.Info) float64 { return float64(i.BytesAcked) },
			valueTyp: prometheus.CounterValue,
		},
		{
			desc:     prometheus.NewDesc("slapi_relay_tcp_bytes_received_total", "Bytes received on the relay connection.", labelKeys, constLabels),
			valueFn:  func(i *tcpinfo.Info) float64 { return float64(i.BytesReceived) },
			valueTyp: prometheus.CounterValue,
		},
	}
	return c
}

func (c *RelayCollector) Describe(descs chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		descs <- m.desc
	}
}

func (c *RelayCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for conn, entry := range c.conns {
		info, err := tcpinfo.GetTCPInfo(uintptr(entry.fd))
		if err != nil {
			if c.onError != nil {
				c.onError(fmt.Errorf("tcpinfo for %v -> %v: %w (dropping)", conn.LocalAddr(), conn.RemoteAddr(), err))
			}
			delete(c.conns, conn)
			continue
		}
		for _, m := range c.metrics {
			ch <- prometheus.MustNewConstMetric(m.desc, m.valueTyp, m.valueFn(info), entry.labels...)
		}
	}
}

// Add registers conn for export under labels, which must line up 1:1 with
// the labelKeys passed to NewRelayCollector.
func (c *RelayCollector) Add(conn net.Conn, labels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[conn] = connEntry{fd: netfd.GetFdFromConn(conn), labels: labels}
}

// Remove stops exporting conn, typically once the relay leg closes.
func (c *RelayCollector) Remove(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, conn)
}
