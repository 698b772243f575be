/*
go-poseaction recognises simple human actions from a live camera feed using
single person pose estimation.  A PoseNet style model is run by an inference
Engine, its heatmap and offset tensors are decoded into a skeleton of 17
keypoints, and a set of temporal classifiers consume the keypoint stream to
detect hand waving, raised arms and push up repetitions.

The pose model itself is treated as a black box behind the Engine interface.
The rknn subpackage provides an Engine for the Rockchip NPU.

See example code and usage in the example subdirectory.
*/
package poseaction
