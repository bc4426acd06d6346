// Package pipeline orchestrates the batch run over the production dataset:
// load, clean, exploratory charts, model training, and report export.
//
// Steps execute sequentially and fail fast; the first error aborts the run
// with a StepError naming the failing step. The load step is implicit in
// every plan and adapts to it: when cleaning is selected it reads the raw
// input, otherwise it picks up the newest cleaned export so chart or model
// runs can operate on a previous cleaning pass.
package pipeline
