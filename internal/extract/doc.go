// Package extract holds the sentence-level collaborators of the pipeline:
// splitting comment text into sentences, mapping comment sentences onto the
// category sentences they were classified with, and matching heuristic
// patterns on a sentence.
package extract
