// Package quikdel is a two-tier last-mile delivery network: demand hotspots
// grouped under hub superspots, routed by per-node Q-learning agents and
// exercised by a tick-based dispatch simulator with ride-sharing.
//
// Layout:
//
//	core/         hotspot, site, travel types and the locality graph
//	matrix/       dense travel matrix with Floyd–Warshall closure
//	network/      hotspot placement, SES scoring, superspot selection, clustering
//	mdp/          per-hotspot and per-superspot decision processes
//	qlearn/       Boltzmann-exploration Q-learning and frozen policies
//	dispatch/     routing, proximity sets, merge arbitration and the simulator
//	store/        SQLite persistence of networks, policies and runs
//	config/       YAML / .env / environment configuration
//	cmd/quikdel   build, train and simulate from the command line
//
// Pipeline:
//
//	Input ──Build──▶ Network ──Formulate──▶ mdp.Set ──TrainAll──▶ Policies
//	                    │                                           │
//	                    └──────────────▶ dispatch.Simulator ◀───────┘
//
//	go get github.com/katalvlaran/quikdel
package quikdel
