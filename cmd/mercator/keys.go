package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaygw/relay/pkg/cli"
	"github.com/relaygw/relay/pkg/dynamickey"
)

var keysBuildFlags struct {
	numeric              string
	format               string
	proxy                string
	timezone             string
	gcppHost             string
	disableVision        bool
	enableSlowPool       bool
	includeWebReferences bool
}

var keysDecodeFlags struct {
	output string
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Build or decode dynamic access keys",
	Long: `Build or decode the dynamic access keys this gateway hands out in place
of a raw token alias: a self-describing identifier that resolves to a pooled
token via its embedded numeric ID, with an optional block of per-key
overrides (proxy, timezone, region, feature flags).

Subcommands:
  build  - Encode a numeric ID and optional overrides into a key
  decode - Decode a key back into its numeric ID and overrides`,
}

var keysBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a dynamic access key",
	Long: `Build a dynamic access key around a numeric identifier.

Examples:
  # Build the default "sk-" form
  mercator keys build --numeric 12345

  # Build the bare base64url form with a proxy override
  mercator keys build --numeric 12345 --format numeric_b64 --proxy eu-west

  # Build with a region override
  mercator keys build --numeric 12345 --gcpp-host eu`,
	RunE: runKeysBuild,
}

var keysDecodeCmd = &cobra.Command{
	Use:   "decode <key>",
	Short: "Decode a dynamic access key",
	Long:  `Decode a dynamic access key (any of its three textual forms) back into its numeric ID and override block.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysDecode,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysBuildCmd, keysDecodeCmd)

	keysBuildCmd.Flags().StringVar(&keysBuildFlags.numeric, "numeric", "", "decimal numeric identifier (required)")
	keysBuildCmd.Flags().StringVar(&keysBuildFlags.format, "format", "sk", "output format: sk, numeric_b64, numeric_decimal")
	keysBuildCmd.Flags().StringVar(&keysBuildFlags.proxy, "proxy", "", "proxy name override")
	keysBuildCmd.Flags().StringVar(&keysBuildFlags.timezone, "timezone", "", "timezone override")
	keysBuildCmd.Flags().StringVar(&keysBuildFlags.gcppHost, "gcpp-host", "", "region override: asia, eu, us")
	keysBuildCmd.Flags().BoolVar(&keysBuildFlags.disableVision, "disable-vision", false, "disable vision support")
	keysBuildCmd.Flags().BoolVar(&keysBuildFlags.enableSlowPool, "enable-slow-pool", false, "opt into the slow pool")
	keysBuildCmd.Flags().BoolVar(&keysBuildFlags.includeWebReferences, "include-web-references", false, "include web references")
	_ = keysBuildCmd.MarkFlagRequired("numeric")

	keysDecodeCmd.Flags().StringVar(&keysDecodeFlags.output, "output", "text", "output format: text, json, csv")
}

func runKeysBuild(cmd *cobra.Command, args []string) error {
	numeric, ok := new(big.Int).SetString(keysBuildFlags.numeric, 10)
	if !ok || numeric.Sign() < 0 {
		return fmt.Errorf("--numeric must be a non-negative decimal integer")
	}

	overrides := dynamickey.Overrides{
		DisableVision:        keysBuildFlags.disableVision,
		EnableSlowPool:       keysBuildFlags.enableSlowPool,
		IncludeWebReferences: keysBuildFlags.includeWebReferences,
	}
	if keysBuildFlags.proxy != "" {
		overrides.ProxyName = &keysBuildFlags.proxy
	}
	if keysBuildFlags.timezone != "" {
		overrides.Timezone = &keysBuildFlags.timezone
	}
	if keysBuildFlags.gcppHost != "" {
		host, err := parseGCPPHost(keysBuildFlags.gcppHost)
		if err != nil {
			return err
		}
		overrides.GCPPHost = &host
	}

	payload := dynamickey.Payload{Numeric: numeric, Overrides: overrides}

	var key string
	var err error
	switch keysBuildFlags.format {
	case "sk":
		key, err = dynamickey.Encode(payload)
	case "numeric_b64":
		key, err = dynamickey.EncodeNumericB64(payload)
	case "numeric_decimal":
		key, err = dynamickey.EncodeNumericDecimal(payload)
	default:
		return fmt.Errorf("unknown format %q: want sk, numeric_b64, or numeric_decimal", keysBuildFlags.format)
	}
	if err != nil {
		return fmt.Errorf("failed to build key: %w", err)
	}

	fmt.Println(key)
	return nil
}

func runKeysDecode(cmd *cobra.Command, args []string) error {
	payload, err := dynamickey.Decode(args[0])
	if err != nil {
		return fmt.Errorf("failed to decode key: %w", err)
	}

	if keysDecodeFlags.output != "text" && keysDecodeFlags.output != "" {
		var format cli.OutputFormat
		switch keysDecodeFlags.output {
		case "json":
			format = cli.FormatJSON
		case "csv":
			format = cli.FormatCSV
		default:
			return fmt.Errorf("unknown --output %q: want text, json, or csv", keysDecodeFlags.output)
		}
		return cli.NewFormatter(format).FormatTo(os.Stdout, decodeResultRow(payload))
	}

	fmt.Printf("numeric: %s\n", payload.Numeric.String())
	if payload.Overrides.IsEmpty() {
		fmt.Println("overrides: none")
		return nil
	}

	fmt.Println("overrides:")
	if payload.Overrides.ProxyName != nil {
		fmt.Printf("  proxy_name: %s\n", *payload.Overrides.ProxyName)
	}
	if payload.Overrides.Timezone != nil {
		fmt.Printf("  timezone: %s\n", *payload.Overrides.Timezone)
	}
	if payload.Overrides.GCPPHost != nil {
		fmt.Printf("  gcpp_host: %s\n", gcppHostString(*payload.Overrides.GCPPHost))
	}
	if payload.Overrides.DisableVision {
		fmt.Println("  disable_vision: true")
	}
	if payload.Overrides.EnableSlowPool {
		fmt.Println("  enable_slow_pool: true")
	}
	if payload.Overrides.IncludeWebReferences {
		fmt.Println("  include_web_references: true")
	}
	if payload.Overrides.UsageCheckModels != nil {
		fmt.Printf("  usage_check_models: variant=%d models=%v\n",
			payload.Overrides.UsageCheckModels.Variant, payload.Overrides.UsageCheckModels.Models)
	}
	return nil
}

func parseGCPPHost(s string) (dynamickey.GCPPHost, error) {
	switch s {
	case "asia":
		return dynamickey.GCPPHostAsia, nil
	case "eu":
		return dynamickey.GCPPHostEU, nil
	case "us":
		return dynamickey.GCPPHostUS, nil
	default:
		return 0, fmt.Errorf("unknown gcpp-host %q: want asia, eu, or us", s)
	}
}

// decodeResultRow flattens a decoded payload into a string-keyed row
// suitable for the json/csv output formatters.
func decodeResultRow(payload dynamickey.Payload) map[string]string {
	row := map[string]string{"numeric": payload.Numeric.String()}
	if payload.Overrides.ProxyName != nil {
		row["proxy_name"] = *payload.Overrides.ProxyName
	}
	if payload.Overrides.Timezone != nil {
		row["timezone"] = *payload.Overrides.Timezone
	}
	if payload.Overrides.GCPPHost != nil {
		row["gcpp_host"] = gcppHostString(*payload.Overrides.GCPPHost)
	}
	row["disable_vision"] = fmt.Sprintf("%t", payload.Overrides.DisableVision)
	row["enable_slow_pool"] = fmt.Sprintf("%t", payload.Overrides.EnableSlowPool)
	row["include_web_references"] = fmt.Sprintf("%t", payload.Overrides.IncludeWebReferences)
	if payload.Overrides.UsageCheckModels != nil {
		row["usage_check_models"] = fmt.Sprintf("variant=%d models=%v",
			payload.Overrides.UsageCheckModels.Variant, payload.Overrides.UsageCheckModels.Models)
	}
	return row
}

func gcppHostString(h dynamickey.GCPPHost) string {
	switch h {
	case dynamickey.GCPPHostEU:
		return "eu"
	case dynamickey.GCPPHostUS:
		return "us"
	default:
		return "asia"
	}
}
