package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# tradelens configuration

[adjustment]
# Stop-loss threshold: trades whose MAE exceeds this are stopped out at -stop_loss
stop_loss = 8.0
# Flat percentage deducted from every trade to model slippage/transaction cost
efficiency = 5.0

[sizing]
# Fraction of full Kelly used for the compounded equity curve
kelly_fraction = 0.5
# Fixed stake per trade for the flat equity curve
stake = 1000.0
# Starting capital for the compounded equity curve
starting_capital = 10000.0

[columns]
# Explicit column mapping. Leave blank to auto-detect from the CSV header.
ticker = ""
date = ""
time = ""
gain_pct = ""
mae_pct = ""
win_loss = ""

[cache]
# Persist evaluation runs to a local SQLite database
enabled = true

[logging]
# Log level: debug, info, warn, error
level = "info"
# Also write logs to a rotating file
file = true

[output]
# Enable colored terminal output
color_enabled = true
# Treat a zero adjusted gain as a win instead of a loss
breakeven_wins = false
`

// createTemplateConfig writes the default config file so the operator has
// something to edit on first run.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
