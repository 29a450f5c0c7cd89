// Package audit defines the core pageaudit rule-check framework.
//
// Architecture overview:
//
//   - Rule checks implement the Audit interface (Meta + Run). Each check
//     consumes the immutable artifact bundle collected for one page and
//     produces a binary-scored Result, optionally carrying a details
//     table and user-facing warnings.
//   - The package-level registry holds every shipped audit; checks
//     register themselves at process start via init, so cmd/ can treat
//     all of them uniformly.
//   - Runner coordinates concurrent execution across multiple target
//     pages with rate limiting, invoking a shared LogFunc per audit so
//     every run produces consistent evidence.
//   - Result and TableDetails model the payload stored in results.json
//     and consumed by the report writers.
//
// This layout keeps rule logic internal while allowing cmd/ to simply
// collect artifacts and feed them through the runner.
package audit
