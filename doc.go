/*
go-vehiclecount counts distinct vehicles in a video stream from per-frame
object detections.  It consumes the (track id, class id) observations
produced by an object tracker and maintains a deduplicated running tally
per vehicle class, counting each physical object exactly once for the
life of its track id.

The root package contains the counting core: the class filter mapping raw
detector class ids to the vehicle labels of interest, and the Counter
accumulator that decides for each observation whether it is a new object,
an already counted one, or noise to ignore.

The detect, tracker, zone, and render subpackages provide the surrounding
pipeline: YOLOv8 ONNX inference via the GoCV DNN module, IoU/Kalman
multi-object tracking, polygon counting zones, and frame overlay drawing.

See example code and usage in the example subdirectory.
*/
package vehiclecount
