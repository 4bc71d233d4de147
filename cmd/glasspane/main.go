package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/glasspane/mirror/internal/mirror"
)

var (
	version = "0.1.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "glasspane",
	Short: "Glasspane display mirror",
	Long:  `Glasspane mirrors one monitor into a scaled, always-on-top overlay window.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start mirroring",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMirror(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List attached displays",
	Run: func(cmd *cobra.Command, args []string) {
		monitors, err := mirror.ListMonitors()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to enumerate displays: %v\n", err)
			os.Exit(1)
		}
		out, err := yaml.Marshal(monitors)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Glasspane v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is glasspane.yaml in the config directory)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(monitorsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
