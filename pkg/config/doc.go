// Package config loads graalkit configuration.
//
// # Overview
//
// Values are layered: built-in defaults, then an optional YAML file named by
// GRAALKIT_CONFIG, then GRAALKIT_* environment variables. Command-line flags
// are applied on top by pkg/cli.
//
// # Configuration Structure
//
// Toolkit settings:
//
//	GRAALKIT_DOWNLOAD_BASE_URL="https://github.com/oracle/graal/releases/download/"  # http, https or s3
//	GRAALKIT_VERSION="1.0.0-rc6"
//	GRAALKIT_CACHE_DIR="$HOME/.graalkit"
//	GRAALKIT_FORCE_EXTRACT="false"
//
// Build settings:
//
//	GRAALKIT_MAIN_CLASS="com.example.Main"
//	GRAALKIT_OUTPUT_NAME="my-app"        # defaults to the project directory name
//	GRAALKIT_OUTPUT_DIR="build/graal"
//	GRAALKIT_CLASSPATH="build/libs/app.jar:build/libs/dep.jar"
//	GRAALKIT_PROJECT_DIR="."
//	GRAALKIT_ASSEMBLE_COMMAND="./gradlew jar"
//
// S3 mirror settings:
//
//	GRAALKIT_S3_REGION="us-east-1"
//	GRAALKIT_S3_ENDPOINT="http://localhost:9000"
//	GRAALKIT_S3_ACCESS_KEY="..."
//	GRAALKIT_S3_SECRET_KEY="..."
//	GRAALKIT_S3_USE_PATH_STYLE="true"
//
// Observability settings:
//
//	GRAALKIT_LOG_LEVEL="info"  # debug, info, warn, error
//	GRAALKIT_LOG_FORMAT="text"  # text, json
//	GRAALKIT_METRICS_PUSH_URL="http://pushgateway:9091"
//	GRAALKIT_OTEL_ENABLED="true"
//	GRAALKIT_OTEL_ENDPOINT="otel-collector:4317"
//
// The same keys in YAML:
//
//	toolkit:
//	  version: 1.0.0-rc6
//	build:
//	  mainClass: com.example.Main
//	  classpath:
//	    - build/libs/app.jar
//	observability:
//	  logLevel: debug
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Toolkit: %s\n", cfg.Toolkit.Version)
package config
