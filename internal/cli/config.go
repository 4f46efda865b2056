package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/amirbrooks/ganttcsv/internal/config"
	"github.com/amirbrooks/ganttcsv/internal/store"
)

var configKeys = []string{
	"locale",
	"milestone_category",
	"default_category",
	"default_viewpoint",
	"left_pad_days",
	"min_day_width",
	"zoom.day",
	"zoom.week",
	"zoom.month",
	"category_order",
	"viewpoint_order.enabled",
	"viewpoint_order.order",
	"svg.labels_width",
	"svg.font_size",
}

func cmdConfig(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: gantt config <show|set> ...")
		return ExitUsage
	}
	switch args[0] {
	case "show":
		// handled below
	case "set":
		return cmdConfigSet(ws, gf, args[1:])
	default:
		fmt.Fprintln(stderr, "Usage: gantt config <show|set> ...")
		return ExitUsage
	}

	cfg, err := loadConfig(ws, gf)
	if err != nil {
		return fail("config show", err)
	}
	cfgPath := ws.ConfigPath()
	if gf.ConfigPath != "" {
		cfgPath = gf.ConfigPath
	}
	_, err = os.Stat(cfgPath)
	exists := err == nil

	if gf.JSON {
		return emitJSON(ws, gf, "config show", "config", map[string]any{
			"root":        ws.Root,
			"config_path": cfgPath,
			"exists":      exists,
			"config":      cfg,
		})
	}

	if gf.Plain {
		w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		fmt.Fprintf(w, "root\t%s\n", ws.Root)
		fmt.Fprintf(w, "config_path\t%s\n", cfgPath)
		fmt.Fprintf(w, "exists\t%t\n", exists)
		for _, k := range configKeys {
			fmt.Fprintf(w, "%s\t%s\n", k, configValue(cfg, k))
		}
		_ = w.Flush()
		return ExitOK
	}

	b, err := config.Marshal(cfg)
	if err != nil {
		return fail("config show", err)
	}
	fmt.Fprintf(stdout, "# %s", cfgPath)
	if !exists {
		fmt.Fprint(stdout, " (not written yet, showing defaults)")
	}
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, string(b))
	return ExitOK
}

func configValue(cfg config.Config, key string) string {
	switch key {
	case "locale":
		return cfg.Locale
	case "milestone_category":
		return cfg.MilestoneCategory
	case "default_category":
		return cfg.DefaultCategory
	case "default_viewpoint":
		return cfg.DefaultViewpoint
	case "left_pad_days":
		return strconv.Itoa(cfg.LeftPadDays)
	case "min_day_width":
		return strconv.Itoa(cfg.MinDayWidth)
	case "zoom.day":
		return strconv.Itoa(cfg.Zoom.Day)
	case "zoom.week":
		return strconv.Itoa(cfg.Zoom.Week)
	case "zoom.month":
		return strconv.Itoa(cfg.Zoom.Month)
	case "category_order":
		return strings.Join(cfg.CategoryOrder, ",")
	case "viewpoint_order.enabled":
		return strconv.FormatBool(cfg.ViewpointOrder.Enabled)
	case "viewpoint_order.order":
		return strings.Join(cfg.ViewpointOrder.Order, ",")
	case "svg.labels_width":
		return strconv.Itoa(cfg.SVG.LabelsWidth)
	case "svg.font_size":
		return strconv.Itoa(cfg.SVG.FontSize)
	default:
		return ""
	}
}

func cmdConfigSet(ws *store.Workspace, gf GlobalFlags, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(stderr, "Usage: gantt config set <key> <value>")
		return ExitUsage
	}
	if gf.ConfigPath != "" {
		fmt.Fprintln(stderr, "config set: --config files are read-only; edit the file directly")
		return ExitUsage
	}
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(strings.Join(args[1:], " "))
	cfg := ws.Config()

	positive := func(name string, dst *int) int {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return configSetInvalid(name, value)
		}
		*dst = n
		return ExitOK
	}
	var code int
	switch key {
	case "locale":
		switch strings.ToLower(value) {
		case "ja", "en":
			cfg.Locale = strings.ToLower(value)
		default:
			return configSetInvalid(key, value)
		}
	case "milestone_category":
		if value == "none" || value == "null" {
			value = ""
		}
		cfg.MilestoneCategory = value
	case "default_category":
		cfg.DefaultCategory = value
	case "default_viewpoint":
		cfg.DefaultViewpoint = value
	case "left_pad_days":
		code = positive(key, &cfg.LeftPadDays)
	case "min_day_width":
		code = positive(key, &cfg.MinDayWidth)
	case "zoom.day":
		code = positive(key, &cfg.Zoom.Day)
	case "zoom.week":
		code = positive(key, &cfg.Zoom.Week)
	case "zoom.month":
		code = positive(key, &cfg.Zoom.Month)
	case "svg.labels_width":
		code = positive(key, &cfg.SVG.LabelsWidth)
	case "svg.font_size":
		code = positive(key, &cfg.SVG.FontSize)
	case "category_order":
		cfg.CategoryOrder = splitList(value)
	case "viewpoint_order.enabled":
		v, ok := parseBool(value)
		if !ok {
			return configSetInvalid(key, value)
		}
		cfg.ViewpointOrder.Enabled = v
	case "viewpoint_order.order":
		cfg.ViewpointOrder.Order = splitList(value)
	default:
		fmt.Fprintln(stderr, "Unknown config key:", key)
		fmt.Fprintln(stderr, "Allowed keys:", strings.Join(configKeys, ", "))
		return ExitUsage
	}
	if code != ExitOK {
		return code
	}

	if err := ws.SaveConfig(cfg); err != nil {
		return fail("config set", err)
	}
	if !gf.Quiet {
		fmt.Fprintf(stdout, "Set %s = %s\n", key, configValue(ws.Config(), key))
	}
	return ExitOK
}

// splitList splits a comma separated value; "none" clears the list.
func splitList(value string) []string {
	if value == "" || value == "none" || value == "null" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func configSetInvalid(key, value string) int {
	fmt.Fprintf(stderr, "Invalid value for %s: %s\n", key, value)
	return ExitUsage
}
