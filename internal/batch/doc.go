// Package batch collects the user's image selection and runs the stamping
// pipeline over it.
//
// A Session holds the pending images and logo between user actions. Every
// run works on a Selection, an immutable snapshot taken when the run starts,
// so later edits to the session never reach an in-flight run. Images are
// composited one at a time in input order and packed into a single archive;
// any failure aborts the run and no archive is produced.
package batch
