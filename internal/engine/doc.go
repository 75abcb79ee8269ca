// Package engine implements the Context Algorithm qualifier detector.
//
// The engine assigns qualifier values (e.g. Presence.Absent) to entities
// based on trigger phrases found in the same sentence. Entities start with
// the default value of every registered class; a trigger whose scope covers
// an entity replaces that default.
//
// Processing, per sentence that contains entities:
//  1. Both matchers run over the sentence. Phrase matches arrive with
//     document offsets, token matches relative to the sentence; all are
//     normalized to document offsets.
//  2. Each PRECEDING, FOLLOWING and BIDIRECTIONAL trigger gets an initial
//     scope bounded by the sentence and by the rule's max_scope.
//  3. Matches are grouped by qualifier. Within a group, PSEUDO triggers
//     cancel every trigger they overlap and TERMINATION triggers cut the
//     scopes they overlap.
//  4. For each entity, every surviving scope that overlaps it, whose trigger
//     does not overlap the entity, is a candidate.
//  5. Per qualifier class the closest candidate wins; equal distances go to
//     the higher priority value, then to the earlier trigger.
//
// Sentences are independent: scopes never cross a sentence boundary.
//
// CRITICAL PATTERNS:
//   - Rule keys are "rule_<n>" in registration order and never reused
//   - Termination narrowing iterates a snapshot of the overlapping scopes
//   - The engine holds no per-document state, so one engine can serve
//     concurrent DetectQualifiers calls on different documents
package engine
