// Copyright (c) 2026, BitingLip.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the command-line interface of the BitingLip
// administrative client.
//
// # Overview
//
// The bitinglip CLI issues operator commands against the BitingLip gateway,
// which routes them to the backing cluster, model, worker, and task
// services. Every command follows the same pipeline: resolve configuration,
// build one request descriptor from the static route table, send it through
// the retrying transport client, normalize the response into a Result, and
// render it in the selected output format.
//
// # Commands
//
// cluster - cluster-wide inspection:
//
//	bitinglip cluster status
//	bitinglip cluster health [--component NAME]
//
// models - model lifecycle:
//
//	bitinglip models list [--type T] [--status S] [--page N] [--page-size N]
//	bitinglip models show <name>
//	bitinglip models register <name> (--path P | --url U) [--type T] [--description D] [--metadata JSON]
//	bitinglip models delete <name>
//	bitinglip models download <name> [--type T] [--force]
//	bitinglip models progress <download-id>
//	bitinglip models assign <name> [worker] [--force]
//	bitinglip models unload <name> [worker]
//
// workers - worker membership:
//
//	bitinglip workers list [--status S] [--type T]
//	bitinglip workers show <id>
//	bitinglip workers register <spec|@file>
//	bitinglip workers deregister <id>
//	bitinglip workers update <id> [--status S] [--max-load N] [--capabilities JSON] [--metadata JSON]
//	bitinglip workers ping <id> [--timeout SECONDS]
//
// tasks - task control:
//
//	bitinglip tasks list [--status S] [--page N] [--page-size N]
//	bitinglip tasks create <task-type> [--model M] [--input JSON] [--priority N] [--metadata JSON] [--wait]
//	bitinglip tasks status <id>
//	bitinglip tasks cancel <id>
//
// # Global Flags
//
//	--api-url   gateway base URL
//	--api-key   bearer token for the gateway
//	--format    output format: table, json, csv, yaml (default: table)
//	--timeout   per-attempt request timeout in milliseconds (default: 30000)
//	--retries   retry count for transport failures (default: 3)
//	--verbose   debug logging with status codes and request ids
//	--config    config file path
//
// # Configuration
//
// Each setting resolves independently, highest precedence first: flag,
// BITINGLIP_* environment variable, config file, built-in default. The
// config file defaults to ~/.bitinglip/config.yaml and can be moved with
// BITINGLIP_CONFIG.
//
// # Exit Codes
//
//	0  Success
//	1  Transport or unclassified failure
//	2  Usage, validation, or configuration error
//	3  Authentication rejected
//	4  Resource not found
//	5  Gateway server error
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized
// packages:
//   - pkg/config - configuration resolution
//   - pkg/gateway - route table and retrying HTTP transport
//   - pkg/result - response normalization into the Result envelope
//   - pkg/serializer - output rendering
//   - pkg/errors - the shared error taxonomy
package cli
