// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

/*
Package config loads and validates the application configuration.

Configuration is layered with Koanf v2, later layers overriding
earlier ones:

 1. Struct defaults (defaultConfig)
 2. An optional YAML config file, found at the first of config.yaml,
    config.yml, /etc/filmwise/config.yaml, /etc/filmwise/config.yml,
    or at the path named by CONFIG_PATH
 3. Environment variables, both FILMWISE_-prefixed and the well-known
    bare names (HTTP_PORT, CATALOG_PATH, LOG_LEVEL, ...)

Only variables listed in envMappings are consulted; everything else in
the environment is ignored.

Sections that belong to a single consumer package (scoring weights,
session TTLs, messenger rate limits, pipeline retries) are defined by
that package and embedded here, so their defaults and validation rules
live next to the code that uses them.

The returned Config is validated and immutable; share it freely across
goroutines.
*/
package config
