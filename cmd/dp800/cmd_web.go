package main

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	webAddrFlag     string
	webPortFlag     string
	webIntervalFlag time.Duration
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start web server with live channel state view and metrics",
	Long: `Start a web server that shows the supply's channel states live over a
WebSocket connection and exports them as Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctl := connectDevice()
		defer ctl.Close()
		executeWeb(ctl, webAddrFlag, webPortFlag, webIntervalFlag)
	},
}

func init() {
	webCmd.Flags().StringVarP(&webAddrFlag, "address", "a", "localhost", "Address to bind the web server")
	webCmd.Flags().StringVarP(&webPortFlag, "web-port", "w", "8080", "Port for the web server")
	webCmd.Flags().DurationVarP(&webIntervalFlag, "interval", "i", 2*time.Second, "Polling interval for the live view")
	rootCmd.AddCommand(webCmd)
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local use
	},
}

// supplyPoller serializes access to the one instrument session. The protocol
// gives no multiplexing, so WebSocket clients and the metrics scraper must
// take turns on the socket.
type supplyPoller struct {
	mu  sync.Mutex
	ctl *dp800.Controller
}

func (p *supplyPoller) snapshot() ([]*dp800.ChannelState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctl.AllChannelsState()
}

func executeWeb(ctl *dp800.Controller, addr, port string, interval time.Duration) {
	poller := &supplyPoller{ctl: ctl}

	registry := prometheus.NewRegistry()
	registry.MustRegister(newSupplyCollector(poller))

	http.HandleFunc("/", handleIndex)
	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, poller, interval)
	})

	listenAddr := fmt.Sprintf("%s:%s", addr, port)
	fmt.Printf("Starting web server on http://%s\n", listenAddr)
	fmt.Printf("Press Ctrl+C to stop the server\n")

	if err := http.ListenAndServe(listenAddr, nil); err != nil {
		logrus.Fatalf("Failed to start web server: %v", err)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, poller *supplyPoller, interval time.Duration) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	logrus.Infof("WebSocket client connected from %s", r.RemoteAddr)
	defer logrus.Infof("WebSocket client disconnected from %s", r.RemoteAddr)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First snapshot immediately, then at the interval. A write error means
	// the client went away.
	for {
		states, err := poller.snapshot()
		if err != nil {
			logrus.Warnf("Failed to poll channel states: %v", err)
			if writeErr := conn.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
				return
			}
		} else if err := conn.WriteJSON(states); err != nil {
			return
		}

		<-ticker.C
	}
}

// supplyCollector exports the channel states as Prometheus gauges. Every
// scrape polls the instrument.
type supplyCollector struct {
	poller *supplyPoller

	voltage    *prometheus.Desc
	current    *prometheus.Desc
	ovpValue   *prometheus.Desc
	ocpValue   *prometheus.Desc
	ovpEnabled *prometheus.Desc
	ocpEnabled *prometheus.Desc
	output     *prometheus.Desc
	up         *prometheus.Desc
}

func newSupplyCollector(poller *supplyPoller) *supplyCollector {
	namespace := "dp800"
	labels := []string{"channel"}

	return &supplyCollector{
		poller: poller,
		voltage: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "set_voltage_volts"),
			"Channel voltage set-point in volts",
			labels,
			nil,
		),
		current: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "set_current_amps"),
			"Channel current set-point in amps",
			labels,
			nil,
		),
		ovpValue: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "ovp_volts"),
			"Over-voltage protection threshold in volts",
			labels,
			nil,
		),
		ocpValue: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "ocp_amps"),
			"Over-current protection threshold in amps",
			labels,
			nil,
		),
		ovpEnabled: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "ovp_enabled"),
			"Over-voltage protection status (1=enabled, 0=disabled)",
			labels,
			nil,
		),
		ocpEnabled: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "ocp_enabled"),
			"Over-current protection status (1=enabled, 0=disabled)",
			labels,
			nil,
		),
		output: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "output_enabled"),
			"Channel output status (1=on, 0=off)",
			labels,
			nil,
		),
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "up"),
			"Whether the last poll of the instrument succeeded",
			nil,
			nil,
		),
	}
}

func (c *supplyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.voltage
	ch <- c.current
	ch <- c.ovpValue
	ch <- c.ocpValue
	ch <- c.ovpEnabled
	ch <- c.ocpEnabled
	ch <- c.output
	ch <- c.up
}

func (c *supplyCollector) Collect(ch chan<- prometheus.Metric) {
	states, err := c.poller.snapshot()
	if err != nil {
		logrus.Warnf("Failed to poll channel states for metrics: %v", err)
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)

	for _, state := range states {
		channel := strconv.Itoa(state.Channel)

		ch <- prometheus.MustNewConstMetric(c.voltage, prometheus.GaugeValue, state.SetVoltage, channel)
		ch <- prometheus.MustNewConstMetric(c.current, prometheus.GaugeValue, state.SetCurrent, channel)
		ch <- prometheus.MustNewConstMetric(c.ovpValue, prometheus.GaugeValue, state.OVPValue, channel)
		ch <- prometheus.MustNewConstMetric(c.ocpValue, prometheus.GaugeValue, state.OCPValue, channel)
		ch <- prometheus.MustNewConstMetric(c.ovpEnabled, prometheus.GaugeValue, boolGauge(state.OVPEnabled), channel)
		ch <- prometheus.MustNewConstMetric(c.ocpEnabled, prometheus.GaugeValue, boolGauge(state.OCPEnabled), channel)
		ch <- prometheus.MustNewConstMetric(c.output, prometheus.GaugeValue, boolGauge(state.OutputEnabled), channel)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>DP800 Toolkit</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
table { border-collapse: collapse; }
td, th { border: 1px solid #444; padding: 0.4em 0.8em; text-align: right; }
th { background: #222; }
.on { color: #5f5; font-weight: bold; }
.off { color: #f55; }
#error { color: #f55; }
</style>
</head>
<body>
<h1>DP832A live state</h1>
<table>
<thead><tr><th>Channel</th><th>Output</th><th>Voltage (V)</th><th>Current (A)</th><th>OVP (V)</th><th>OCP (A)</th></tr></thead>
<tbody id="channels"></tbody>
</table>
<p id="error"></p>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  const data = JSON.parse(ev.data);
  const errEl = document.getElementById("error");
  if (!Array.isArray(data)) { errEl.textContent = data.error || ""; return; }
  errEl.textContent = "";
  document.getElementById("channels").innerHTML = data.map(s =>
    "<tr><td>CH" + s.channel + "</td>" +
    "<td class='" + (s.output_enabled ? "on'>ON" : "off'>OFF") + "</td>" +
    "<td>" + s.set_voltage.toFixed(3) + "</td>" +
    "<td>" + s.set_current.toFixed(3) + "</td>" +
    "<td>" + s.ovp_value.toFixed(3) + (s.ovp_enabled ? "" : " (off)") + "</td>" +
    "<td>" + s.ocp_value.toFixed(3) + (s.ocp_enabled ? "" : " (off)") + "</td></tr>"
  ).join("");
};
ws.onclose = () => { document.getElementById("error").textContent = "connection closed"; };
</script>
</body>
</html>
`
