// Package formflow is the conditional navigation engine for a form:
// given the respondent's answer to the current block, it decides which
// block to present next.
//
// The package contains:
//   - Core types: Block, Connection, Rule, FormGraph
//   - The runtime path: Match and Resolve (pure, deterministic)
//
// Authoring-time analysis (orphan detection, order synchronization)
// lives in the authoring package; persistence of connections as edge
// rows lives in the store package. The engine itself owns no storage
// and executes no side effects; it only answers "what is the next
// block".
package formflow
