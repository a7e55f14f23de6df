// Package mongodb manages the MongoDB connection behind storage/mongodb.
//
// Configuration comes from the environment (see pkg/config), connection
// setup retries transient failures, and Healthcheck plugs into readiness
// probes. The package only hands out driver handles; collection layout and
// indexes belong to storage/mongodb.
package mongodb
