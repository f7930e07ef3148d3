// Package janitor keeps a Solana wallet tidy. It is designed to be run
// repeatedly against live chain state: every run reconstructs what it needs
// from the ledger, and running it twice is harmless.
//
// The core functionalities include:
//   - Holding Scanner: enumerating the token accounts of an owner and
//     decoding them into Holding snapshots.
//   - Shortlist Resolver: intersecting a ranked "top tokens" feed with the
//     existing holdings to find which associated token accounts are missing.
//   - Account Provisioner: creating the missing associated token accounts in
//     batches of at most ten instructions per transaction.
//   - Sweep Engine: swapping every non-kept holding back into a reference
//     mint through a routing service, skipping dust, one holding at a time.
//   - Priority Fee Adjuster: rewriting the compute unit price of a prebuilt
//     swap transaction before signing it.
//
// The ledger, the routing service, the top tokens feed and the fee estimator
// are collaborators described by interfaces. The solana and jupiter packages
// provide the production implementations, and the cmd package the CLI.
package janitor
