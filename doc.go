// Package tll provides transfer learning building blocks for Go, centered
// on adversarial domain adaptation for image classification backends.
//
// Transfer-Learning-Library offers composable neural network modules with
// a PyTorch-like layering discipline, so engineers porting domain
// adaptation pipelines can keep the structure they already know while
// gaining Go's deployment story.
//
// # Features
//
// - Composable Modules: backbone, bottleneck and head assembled explicitly
// - Importance Weighted Adversarial Nets: IWAN classifier and discriminator head
// - Scheduled Adversarial Trade-Off: sigmoid ramp with overrun warnings
// - Per-Group Learning Rates: finetune-aware optimizer parameter groups
// - Robust Error Handling: typed errors with stack traces throughout
// - CPU Parallel: automatic parallelization for large batches
//
// # Installation
//
// Install using go get:
//
//	go get github.com/JacobARose/Transfer-Learning-Library
//
// # Quick Start
//
// Here's a minimal IWAN setup:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/JacobARose/Transfer-Learning-Library/adaptation/iwan"
//	    "github.com/JacobARose/Transfer-Learning-Library/nn"
//	)
//
//	func main() {
//	    // A linear feature extractor stands in for a conv backbone.
//	    backbone, err := nn.NewLinear(2048, 64)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Classifier with a 256-dim bottleneck over the pooled features.
//	    clf, err := iwan.NewImageClassifier(backbone, 31)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Parameter groups for the optimizer: the pretrained backbone
//	    // trains at a tenth of the base learning rate.
//	    groups, err := clf.ParamGroups(iwan.ScopeAll)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, g := range groups {
//	        fmt.Println(g.Name, g.LRMult, len(g.Params))
//	    }
//
//	    // Trade-off schedule for the adversarial loss term.
//	    scheduler, err := iwan.NewTradeOffScheduler(1000, 1.0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    scheduler.Step()
//	    fmt.Println(scheduler.GetTradeOff())
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - nn: neural network modules (Linear, BatchNorm1d, ReLU, Dropout, pooling, Sequential)
//   - modules: classifier composition, persistence and weight export
//   - adaptation/iwan: IWAN classifier, discriminator head, trade-off scheduler
//   - metrics: classification metrics and multi-domain evaluation
//   - visualize: training curve and schedule plotting
//   - pkg/errors: typed errors, warnings and numerical stability helpers
//   - pkg/log: structured logging with ML-specific attribute keys
//   - core/parallel: parallel processing utilities
//
// # Performance
//
// Forward passes parallelize automatically across CPU cores:
//
//   - Module forwards split batches above 256 rows
//   - Metric computations split batches above 2048 rows
//   - Worker counts follow the detected CPU core count
//
// # Contributing
//
// Contributions are welcome! Please see our GitHub repository:
// https://github.com/JacobARose/Transfer-Learning-Library
//
// # License
//
// Transfer-Learning-Library is released under the MIT License.
package tll
