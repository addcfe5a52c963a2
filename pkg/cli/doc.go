// Package cli provides the graalkit command-line interface.
//
// # Overview
//
// graalkit acquires a GraalVM toolkit for the host, caches it under
// ~/.graalkit/<version>/ and drives its native-image compiler. Each
// command runs the stage chain up to the step it names; stages whose output
// is already cached are skipped.
//
// # Commands
//
// download: Fetch the release archive into the cache
//
//	graalkit download --version 1.0.0-rc6
//
// extract: Download if needed, then unpack the toolkit
//
//	graalkit extract --force-extract
//
// native-image: Build a native executable from an assembled classpath
//
//	graalkit native-image \
//		--main-class com.example.Main \
//		--classpath build/libs/app.jar \
//		--assemble "./gradlew jar" \
//		--output-dir build/graal
//
// Add --watch to rebuild whenever a classpath entry changes.
//
// plan: Show which stages would run
//
//	graalkit plan
//
// version: Print the graalkit version
//
// # Configuration
//
// Flags override GRAALKIT_* environment variables, which override the YAML
// file named by GRAALKIT_CONFIG. See pkg/config.
//
// # Exit Codes
//
// The process exits non-zero if and only if a stage fails. Errors name the
// failing stage.
package cli
