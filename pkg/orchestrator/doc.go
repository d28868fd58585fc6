// Package orchestrator wires schema resolution (a saved schema or an OpenAPI
// operation), preset transforms, a form session and a renderer into a single
// Generate call.
package orchestrator
