// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package main is the entry point for the Venuerec HTTP server.

The server answers "venues like this one" queries from a trained
nearest-neighbour model and falls back to catalog lookups while no model is
loaded.

# Application Architecture

Long-lived work runs under a Suture v4 supervisor tree:

	RootSupervisor ("venuerec")
	├── ModelSupervisor ("model-layer")
	│   ├── Trainer (scheduled retraining, optional on startup)
	│   └── Artifact reloader (polls the model store)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Catalog: DuckDB, BadgerDB or in-memory, behind a circuit breaker
 4. Result cache: in-memory, Redis or disabled
 5. Model store: versioned artifact files on disk
 6. Engine and service
 7. Supervisor tree
 8. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	CATALOG_BACKEND=duckdb       # duckdb, badger or memory
	DUCKDB_PATH=/data/venues.duckdb
	RECOMMEND_MODEL_PATH=/data/models
	RECOMMEND_TRAIN_INTERVAL=24h
	CACHE_BACKEND=memory         # memory, redis or none
	REDIS_ADDR=redis:6379

When a config file is in use, edits to logging.level are applied without a
restart.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM: the HTTP server
stops accepting connections and drains in-flight requests, a running training
pass is cancelled, and the catalog and cache are closed.

# Example Usage

	export CATALOG_BACKEND=duckdb
	export DUCKDB_PATH=./venues.duckdb
	export RECOMMEND_MODEL_PATH=./models
	export RECOMMEND_TRAIN_ON_STARTUP=true
	./venuerec-server

Populate the catalog and manage model versions with venuerec-trainer.
*/
package main
