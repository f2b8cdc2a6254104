package main

import (
	"fmt"
	"os"

	"github.com/bench-tools/dp800-toolkit/lib/dp800"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	ipFlag      string
	portFlag    int
	verboseFlag bool

	cfg toolConfig
)

var rootCmd = &cobra.Command{
	Use:   "dp800-toolkit",
	Short: "DP800 Toolkit - Rigol DP832A bench power supply control",
	Long: `DP800 Toolkit provides a command-line interface for controlling a Rigol
DP832A bench power supply over SCPI on a raw TCP socket. You can query
identity and channel state, set voltage and current, toggle outputs,
apply presets, and capture screenshots.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	// Disable the default help command (use --help flag instead)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetOutput(os.Stderr)

	// Config file values become the flag defaults
	cfg = loadConfig()
	setupColor(cfg)

	// Global flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&ipFlag, "ip", cfg.Device.IP, "IP address of the DP832A device")
	rootCmd.PersistentFlags().IntVar(&portFlag, "port", cfg.Device.Port, "Port number for SCPI communication")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "V", false, "Log every SCPI exchange")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connectDevice opens a session to the instrument and checks that it really
// is a supported DP832A before handing the controller to a command.
func connectDevice() *dp800.Controller {
	ctl, err := dp800.Connect(ipFlag, portFlag, dp800.DefaultTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	deviceID, err := ctl.DeviceID()
	if err == nil {
		err = dp800.ValidateDeviceID(deviceID)
	}
	if err != nil {
		ctl.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return ctl
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// fatalClose releases the session before exiting; os.Exit does not run
// deferred closes and the instrument refuses a second connection while one
// is still open.
func fatalClose(ctl *dp800.Controller, err error) {
	ctl.Close()
	fatal(err)
}
