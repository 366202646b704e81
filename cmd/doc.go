// Package cmd provides the command-line interface for kubectl-jobs.
//
// Every operation subcommand resolves an account, builds one kubectl
// request and runs it through the dispatcher:
//
//	kubectl-jobs deploy -f manifests.yaml
//	kubectl-jobs patch Deployment.apps web --type merge -p '{"spec":{"replicas":3}}'
//	kubectl-jobs delete Pod web-0 --grace-period=0
//	kubectl-jobs get ServiceMonitor.monitoring.coreos.com web -o json
//	kubectl-jobs list Deployment.apps -o name
//	kubectl-jobs top -n kube-system
//
// The custom resource kind registry is seeded from --kinds-file and, with
// --discover-kinds, from cluster discovery. The kinds subcommands print,
// refresh and watch it:
//
//	kubectl-jobs kinds list --kinds-file kinds.yaml
//	kubectl-jobs kinds refresh
//	kubectl-jobs kinds watch --interval 1m --metrics-addr :9090
//
// Accounts map names to a kubeconfig and context. They come from a TOML
// file (--accounts-file); without one, --kubeconfig and --context define
// the single account "default".
//
//	kubectl-jobs accounts list --accounts-file accounts.toml
//	kubectl-jobs accounts check
//
// version and self-update report and replace the installed binary.
package cmd
