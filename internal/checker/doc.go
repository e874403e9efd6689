// Package checker holds the SRI and header checks behind seca-sri.
//
// Architecture overview:
//
//   - ExtractResources scans raw HTML text for external <link> and <script>
//     elements with two regexp2 passes (links first, then scripts) and returns
//     immutable Resource values.
//   - Policy classifies each Resource against an ordered list of
//     ExemptionRule predicates. DefaultExemptions covers preconnect hints and
//     font hosts whose content has no stable hash.
//   - Verifier fetches a resource once and recomputes its sha256/sha384/sha512
//     digest. Failures come back as InvalidIntegrityFormatError,
//     HTTPStatusError or NetworkError so callers can count them per resource.
//   - AnalyzeResponseHeaders reads the CORS and Vary headers of a verified
//     response; ResponseHeaders.Notes turns them into warnings.
//   - Runner fans verification out over a bounded errgroup behind a global
//     rate limiter and hands results back in job order.
//   - AuditHeaders looks for the four baseline security header names in the
//     document text.
//
// Nothing here keeps state between runs.
package checker
