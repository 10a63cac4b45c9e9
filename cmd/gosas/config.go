/*
 * config.go, part of gosas.
 *
 * Copyright 2025 The gosas authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// cfg holds the defaults read from gosas.yaml. Flags always win over the
// file; the file wins over the built-in defaults below.
var cfg *viper.Viper

// loadConfig reads gosas.yaml from the working directory, its config/
// subdirectory, or the user's home. A missing file is not an error.
func loadConfig() error {
	cfg = viper.New()
	cfg.SetConfigName("gosas")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(".")
	cfg.AddConfigPath("./config")
	if home, err := os.UserHomeDir(); err == nil {
		cfg.AddConfigPath(filepath.Join(home, ".config", "gosas"))
	}
	cfg.SetDefault("runs", 15)
	cfg.SetDefault("mode", "fast")
	cfg.SetDefault("symmetry", "P1")
	cfg.SetDefault("refine", true)
	cfg.SetDefault("resolution", true)
	cfg.SetDefault("programs.dammif", "dammif")
	cfg.SetDefault("programs.dammin", "dammin")
	cfg.SetDefault("programs.damaver", "damaver")
	cfg.SetDefault("programs.cifsup", "cifsup")
	cfg.SetDefault("programs.sasres", "sasres")
	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read gosas.yaml: %w", err)
	}
	return nil
}
