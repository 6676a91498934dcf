package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wippyai/wirepb/codec"
	"github.com/wippyai/wirepb/schema"
	"go.uber.org/zap"
)

func main() {
	var (
		configFile  = flag.String("config", "", "TOML config file with defaults")
		schemaFile  = flag.String("schema", "", "TOML schema file")
		typeName    = flag.String("type", "", "Message type to decode or encode")
		inFile      = flag.String("in", "-", "Input file (- for stdin)")
		charsetName = flag.String("charset", "", "Charset for string fields without one")
		hexIn       = flag.Bool("hex", false, "Input (decode) or output (encode) is hex text")
		raw         = flag.Bool("raw", false, "Dump fields without a schema")
		encode      = flag.Bool("encode", false, "Encode a TOML value document instead of decoding")
		list        = flag.Bool("list", false, "List message types in the schema and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = loadConfig(*configFile, cfg); err != nil {
			fail(err)
		}
	}
	if *schemaFile != "" {
		cfg.Schema = *schemaFile
	}
	if *typeName != "" {
		cfg.Type = *typeName
	}
	if *charsetName != "" {
		cfg.Charset = *charsetName
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()
	codec.SetLogger(logger)
	schema.SetLogger(logger)

	if !*raw && cfg.Schema == "" {
		fmt.Fprintln(os.Stderr, "Usage: pbwire -schema <schema.toml> -type <name> [-in payload] [-hex]")
		fmt.Fprintln(os.Stderr, "       pbwire -schema <schema.toml> -type <name> -encode -in values.toml [-hex]")
		fmt.Fprintln(os.Stderr, "       pbwire -schema <schema.toml> -list")
		fmt.Fprintln(os.Stderr, "       pbwire -raw [-in payload] [-hex]")
		fmt.Fprintln(os.Stderr, "       pbwire -schema <schema.toml> -i -in payload  (interactive mode)")
		os.Exit(1)
	}

	if err := run(cfg, logger, *inFile, *hexIn, *raw, *encode, *list, *interactive); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func run(cfg config, logger *zap.Logger, inFile string, hexIn, raw, encode, list, interactive bool) error {
	out := &printer{w: os.Stdout, color: stdoutIsTerminal()}
	if raw {
		data, err := readPayload(inFile, hexIn)
		if err != nil {
			return err
		}
		return out.dumpRaw(data, 0)
	}

	reg := schema.NewRegistry()
	if err := schema.LoadTOML(reg, cfg.Schema); err != nil {
		return err
	}
	if err := reg.Freeze(); err != nil {
		return err
	}
	logger.Debug("schema loaded", zap.String("path", cfg.Schema), zap.Int("types", reg.Len()))
	out.reg = reg

	if list {
		for _, name := range messageNames(reg) {
			fmt.Fprintln(os.Stdout, name)
		}
		return nil
	}

	opts := append(cfg.codecOptions(), codec.WithRegistry(reg), codec.WithLogger(logger))

	if interactive {
		data, err := readPayload(inFile, hexIn)
		if err != nil {
			return err
		}
		return runInteractive(reg, codec.NewDecoder(opts...), data, cfg.Type)
	}

	if cfg.Type == "" {
		return fmt.Errorf("-type is required")
	}

	if encode {
		input, err := readInput(inFile)
		if err != nil {
			return err
		}
		var values map[string]any
		if _, err := toml.Decode(string(input), &values); err != nil {
			return fmt.Errorf("parse values: %w", err)
		}
		if desc, ok := reg.Lookup(cfg.Type); ok {
			if values, err = valuesFromTOML(reg, desc, values); err != nil {
				return fmt.Errorf("parse values: %w", err)
			}
		}
		data, err := codec.NewEncoder(opts...).Encode(cfg.Type, values)
		if err != nil {
			return err
		}
		if hexIn {
			_, err = fmt.Fprintln(os.Stdout, hex.EncodeToString(data))
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	data, err := readPayload(inFile, hexIn)
	if err != nil {
		return err
	}
	m, err := codec.NewDecoder(opts...).Decode(cfg.Type, data)
	if err != nil {
		return err
	}
	out.line(0, "%s {", out.style(typeStyle, m.Type()))
	out.message(m, 1)
	out.line(0, "}")
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func readPayload(path string, isHex bool) ([]byte, error) {
	input, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return payload(input, isHex)
}

// payload returns the wire bytes of input, decoding hex text when asked.
// Whitespace inside hex text is ignored.
func payload(input []byte, isHex bool) ([]byte, error) {
	if !isHex {
		return input, nil
	}
	text := strings.Join(strings.Fields(string(input)), "")
	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return data, nil
}

// messageNames lists the registered types, without synthetic map entries.
func messageNames(reg *schema.Registry) []string {
	var names []string
	for _, name := range reg.Names() {
		if m, ok := reg.Lookup(name); ok && !m.IsPair() {
			names = append(names, name)
		}
	}
	return names
}
