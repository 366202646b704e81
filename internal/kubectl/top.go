package kubectl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ContainerMetrics is the usage of one container as reported by kubectl top.
type ContainerMetrics struct {
	Name  string
	Usage corev1.ResourceList
}

// PodMetrics groups container usage by pod, in output order.
type PodMetrics struct {
	Pod        string
	Containers []ContainerMetrics
}

// TopConsumer parses `kubectl top po --containers` output:
//
//	POD          NAME    CPU(cores)   MEMORY(bytes)
//	my-app-abc   nginx   1m           5Mi
func TopConsumer(r io.Reader) ([]PodMetrics, error) {
	scanner := bufio.NewScanner(r)
	pods := []PodMetrics{}
	index := map[string]int{}

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && fields[0] == "POD" {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("top output line %d: expected 4 columns, got %d", line, len(fields))
		}

		cpu, err := resource.ParseQuantity(fields[2])
		if err != nil {
			return nil, fmt.Errorf("top output line %d: cpu %q: %w", line, fields[2], err)
		}
		memory, err := resource.ParseQuantity(fields[3])
		if err != nil {
			return nil, fmt.Errorf("top output line %d: memory %q: %w", line, fields[3], err)
		}

		container := ContainerMetrics{
			Name: fields[1],
			Usage: corev1.ResourceList{
				corev1.ResourceCPU:    cpu,
				corev1.ResourceMemory: memory,
			},
		}

		i, ok := index[fields[0]]
		if !ok {
			i = len(pods)
			index[fields[0]] = i
			pods = append(pods, PodMetrics{Pod: fields[0]})
		}
		pods[i].Containers = append(pods[i].Containers, container)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read top output: %w", err)
	}
	return pods, nil
}
