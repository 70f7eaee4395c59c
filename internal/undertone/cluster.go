package undertone

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
)

type vec3 [3]float64

func (v vec3) add(o vec3) vec3 { return vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

func (v vec3) scale(f float64) vec3 { return vec3{v[0] * f, v[1] * f, v[2] * f} }

func (v vec3) div(n int) vec3 {
	d := float64(n)
	return vec3{v[0] / d, v[1] / d, v[2] / d}
}

func (v vec3) dist2(o vec3) float64 {
	d0, d1, d2 := v[0]-o[0], v[1]-o[1], v[2]-o[2]
	return d0*d0 + d1*d1 + d2*d2
}

func toVecs(pixels []RGB) []vec3 {
	out := make([]vec3, len(pixels))
	for i, p := range pixels {
		out[i] = vec3{float64(p.R), float64(p.G), float64(p.B)}
	}
	return out
}

// percentile interpolates linearly between closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func channel(points []vec3, c int) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p[c]
	}
	slices.Sort(out)
	return out
}

// trimOutliers drops points outside the 5th..95th percentile on any channel. If that
// leaves nothing the input is returned unchanged.
func trimOutliers(points []vec3) []vec3 {
	var lo, hi vec3
	for c := 0; c < 3; c++ {
		sorted := channel(points, c)
		lo[c], hi[c] = percentile(sorted, 5), percentile(sorted, 95)
	}

	kept := make([]vec3, 0, len(points))
	for _, p := range points {
		if p[0] >= lo[0] && p[0] <= hi[0] &&
			p[1] >= lo[1] && p[1] <= hi[1] &&
			p[2] >= lo[2] && p[2] <= hi[2] {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return points
	}
	return kept
}

func mean(points []vec3) vec3 {
	var sum vec3
	for _, p := range points {
		sum = sum.add(p)
	}
	return sum.div(len(points))
}

func median(points []vec3) vec3 {
	var out vec3
	for c := 0; c < 3; c++ {
		out[c] = percentile(channel(points, c), 50)
	}
	return out
}

// kmeans partitions points into k clusters with k-means++ seeding and Lloyd
// iterations, keeping the best of restarts runs by inertia. It returns the centroids
// and the number of points assigned to each. ctx is checked before every restart.
func kmeans(ctx context.Context, points []vec3, k, restarts, iterations int, rng *rand.Rand) ([]vec3, []int, error) {
	var (
		bestCentroids []vec3
		bestCounts    []int
		bestInertia   = math.Inf(1)
	)
	for run := 0; run < restarts; run++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		centroids := seedCentroids(points, k, rng)
		counts, inertia := lloyd(points, centroids, iterations)
		if inertia < bestInertia {
			bestCentroids, bestCounts, bestInertia = centroids, counts, inertia
		}
	}
	return bestCentroids, bestCounts, nil
}

func seedCentroids(points []vec3, k int, rng *rand.Rand) []vec3 {
	centroids := make([]vec3, 0, k)
	centroids = append(centroids, points[rng.IntN(len(points))])

	dist := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			d := math.Inf(1)
			for _, c := range centroids {
				d = math.Min(d, p.dist2(c))
			}
			dist[i] = d
			total += d
		}

		next := rng.IntN(len(points))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 {
					next = i
					break
				}
			}
		}
		centroids = append(centroids, points[next])
	}
	return centroids
}

func lloyd(points []vec3, centroids []vec3, iterations int) ([]int, float64) {
	k := len(centroids)
	labels := make([]int, len(points))
	counts := make([]int, k)
	var inertia float64

	for iter := 0; iter < iterations; iter++ {
		changed := iter == 0
		inertia = 0
		for i, p := range points {
			best, bestD := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := p.dist2(centroid); d < bestD {
					best, bestD = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
			inertia += bestD
		}

		sums := make([]vec3, k)
		clear(counts)
		for i, p := range points {
			sums[labels[i]] = sums[labels[i]].add(p)
			counts[labels[i]]++
		}
		for c := range centroids {
			if counts[c] > 0 {
				centroids[c] = sums[c].div(counts[c])
			}
		}
		if !changed {
			break
		}
	}
	return counts, inertia
}

// dominantColor blends the centre of the largest colour cluster with the median and
// mean of the outlier-trimmed pixels (60/25/15). Channels are truncated.
func dominantColor(ctx context.Context, pixels []RGB, seed uint64) (RGB, error) {
	if len(pixels) == 0 {
		return DefaultRGB, nil
	}
	points := trimOutliers(toVecs(pixels))

	avg := mean(points)
	dominant := avg
	if k := min(3, len(points)); k > 1 {
		rng := rand.New(rand.NewPCG(seed, seed))
		centroids, counts, err := kmeans(ctx, subsample(points, maxClusterPoints), k, kmeansRestarts, kmeansIterations, rng)
		if err != nil {
			return RGB{}, err
		}
		largest := 0
		for c := range counts {
			if counts[c] > counts[largest] {
				largest = c
			}
		}
		dominant = centroids[largest]
	}

	final := dominant.scale(0.6).add(median(points).scale(0.25)).add(avg.scale(0.15))
	return RGB{R: int(final[0] + 1e-9), G: int(final[1] + 1e-9), B: int(final[2] + 1e-9)}, nil
}

const (
	kmeansRestarts   = 4
	kmeansIterations = 50
	maxClusterPoints = 20000
)

// subsample keeps at most limit points, evenly spaced.
func subsample(points []vec3, limit int) []vec3 {
	if len(points) <= limit {
		return points
	}
	out := make([]vec3, 0, limit)
	step := float64(len(points)) / float64(limit)
	for i := 0; i < limit; i++ {
		out = append(out, points[int(float64(i)*step)])
	}
	return out
}
