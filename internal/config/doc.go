// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package config provides centralized configuration management for the
recommendation server and trainer.

# Configuration Sources

Configuration is layered with koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (structs provider)
 2. A YAML file: CONFIG_PATH, or config.yaml / config.yml in the working
    directory, or /etc/venuerec/config.yaml
 3. Environment variables, through an explicit mapping table

Environment variables that are not in the mapping table are ignored.

# Sections

  - server: listen address and HTTP timeouts (HTTP_PORT, HTTP_HOST, ...)
  - catalog: backend selection and circuit breaker (CATALOG_BACKEND, DUCKDB_PATH, ...)
  - recommend: artifact path, model weights, scheduling (RECOMMEND_*)
  - cache: result cache backend (CACHE_BACKEND, REDIS_ADDR, ...)
  - security: CORS and rate limiting (CORS_ORIGINS, RATE_LIMIT_REQUESTS, ...)
  - logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Example config.yaml:

	server:
	  port: 8080
	catalog:
	  backend: badger
	  badger_path: /var/lib/venuerec/catalog
	recommend:
	  model_path: /var/lib/venuerec/models
	  train_on_startup: true
	cache:
	  backend: redis
	  redis_addr: redis:6379

Every section has a Validate method; Load fails on the first invalid
section.
*/
package config
