// Package multiview measures how well the differential geometry of space
// curves survives reconstruction from two calibrated views and reprojection
// into a third. It was designed to produce synthetic ground truth for
// multiview curve reconstruction algorithms, but its camera and projection
// primitives are general enough to be useful on their own.
//
// # Differential points
//
// The core values of this package are differential points: samples of a curve
// together with their local geometry up to third order. [DifferentialPoint3D]
// holds a point of a space curve with its Frenet frame, curvature, arclength
// derivative of curvature and torsion. [DifferentialPoint2D] holds the
// corresponding image quantities: position, unit tangent, signed curvature and
// its derivative with respect to image arclength.
//
// Analytic curves ([Helix], [Circle3D], [Ellipse3D] and [Line3D]) produce
// exact differential points through the [Curve] interface.
//
// # Cameras
//
// A [Camera] combines a [Calibration] with a [Rotation] and a center. Its
// [Camera.Project] method maps a differential point of a space curve to the
// differential point of the image curve by differentiating the perspective
// projection three times. Projection fails, reported by a boolean, for points
// behind the camera and for tangents along the viewing ray.
//
// Two cameras form a [Rig], which caches the fundamental matrix and the first
// view's epipole. [Rig.Reconstruct] inverts projection: given the same curve
// point observed in both views, it recovers position, tangent, curvature,
// curvature rate and torsion. Reconstruction is ill-conditioned when the first
// view's tangent runs along its epipolar line, which [Rig.EpipolarAngle]
// measures.
//
// [SphericalSampler] places random cameras on a sphere around the origin,
// optionally keeping a minimum angular separation between them.
// [TurntableCameras] places them on a circle, as in a turntable sequence.
//
// # Reprojection errors
//
// [ErrorEngine.Compute] takes [Correspondences], one sequence of image
// points per view, reconstructs every correspondence from views 0 and 1 and
// compares its reprojection into view 2 with the observed point. Points whose
// first-view tangent is within the engine's threshold of the epipolar line are
// not scored. [MaxErrors] and [Describe] summarize the result.
//
// # Conventions
//
// World and camera frames are right-handed. Camera coordinates of a world
// point X are R (X − C), and the third coordinate is the depth. Pixel
// coordinates are obtained from normalized image coordinates by the
// calibration's [Affine] transform.
//
// Angles passed to [Curve.Sample] and the turntable functions are in degrees.
// All other angles are in radians.
package multiview
